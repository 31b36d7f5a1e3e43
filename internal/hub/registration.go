package hub

import (
	"context"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/notation"
	"ctchen222/Hex/internal/repository"
	"ctchen222/Hex/internal/room"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Create hosts a new game between players, black first. A size of zero
// selects the default size. The game is left in the created state.
func (h *Hub) Create(ctx context.Context, size int, players [2]hex.Player) (*room.Room, error) {
	if size == 0 {
		size = h.defaultSize
	}
	roomID := uuid.New().String()
	ctx, span := tracer.Start(ctx, "hub.Create", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.Int("game.size", size),
		attribute.String("player1.id", players[0].ID),
		attribute.String("player2.id", players[1].ID),
	))
	defer span.End()

	if err := h.checkSize(size); err != nil {
		recordError(span, err, "Invalid board size")
		return nil, err
	}
	g, err := hex.NewGame(size, players)
	if err != nil {
		recordError(span, err, "Could not create game")
		return nil, err
	}

	r := h.add(ctx, roomID, g)
	if err := r.Save(ctx); err != nil {
		h.Remove(ctx, roomID)
		recordError(span, err, "Failed to save new game")
		return nil, fmt.Errorf("failed to save game %s: %w", roomID, err)
	}
	slog.InfoContext(ctx, "game created", "room.id", roomID, "game.size", size, "player1.id", players[0].ID, "player2.id", players[1].ID)
	return r, nil
}

// Import hosts a game read from an SGF record. ids identify the players in
// the record's PB/PW order and may be empty.
func (h *Hub) Import(ctx context.Context, sgf string, ids [2]string) (*room.Room, error) {
	roomID := uuid.New().String()
	ctx, span := tracer.Start(ctx, "hub.Import", roomAttrs(roomID))
	defer span.End()

	g, err := notation.DecodeWithIDs(sgf, ids)
	if err != nil {
		recordError(span, err, "Could not decode record")
		return nil, err
	}
	if err := h.checkSize(g.Size()); err != nil {
		recordError(span, err, "Invalid board size")
		return nil, err
	}

	r := h.add(ctx, roomID, g)
	if err := r.Save(ctx); err != nil {
		h.Remove(ctx, roomID)
		recordError(span, err, "Failed to save imported game")
		return nil, fmt.Errorf("failed to save game %s: %w", roomID, err)
	}
	slog.InfoContext(ctx, "game imported", "room.id", roomID, "game.size", g.Size(), "game.moves", g.MoveCount(), "game.state", g.State().String())
	return r, nil
}

// Reconnect finds the room of the game playerID was last seated in.
func (h *Hub) Reconnect(ctx context.Context, playerID string) (*room.Room, error) {
	ctx, span := tracer.Start(ctx, "hub.Reconnect", trace.WithAttributes(
		attribute.String("player.id", playerID),
	))
	defer span.End()

	if h.deps.Presence == nil {
		return nil, fmt.Errorf("player %s: %w", playerID, repository.ErrNotFound)
	}
	presence, err := h.deps.Presence.FindPresence(ctx, playerID)
	if err != nil {
		recordError(span, err, "Could not find player presence")
		return nil, err
	}
	span.SetAttributes(attribute.String("room.id", presence.GameID))
	slog.InfoContext(ctx, "player reconnecting", "player.id", playerID, "room.id", presence.GameID)
	return h.Get(ctx, presence.GameID)
}

func (h *Hub) restore(ctx context.Context, id string) (*room.Room, error) {
	ctx, span := tracer.Start(ctx, "hub.restore", roomAttrs(id))
	defer span.End()

	snap, err := h.deps.Games.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			recordError(span, err, "Could not load game snapshot")
		}
		return nil, err
	}
	g, err := gameFromSnapshot(snap)
	if err != nil {
		recordError(span, err, "Could not rebuild game from snapshot")
		return nil, fmt.Errorf("failed to restore game %s: %w", id, err)
	}
	slog.InfoContext(ctx, "game restored", "room.id", id, "game.state", g.State().String(), "game.moves", g.MoveCount())
	return h.add(ctx, id, g), nil
}

// gameFromSnapshot rebuilds a game. Records of games that never started are
// read for their header only, since replaying a record starts the game.
func gameFromSnapshot(snap *repository.GameSnapshot) (*hex.Game, error) {
	tree, err := notation.Parse(snap.SGF)
	if err != nil {
		return nil, err
	}

	if snap.State == hex.StateCreated.String() {
		info, err := notation.ReadInfo(tree)
		if err != nil {
			return nil, err
		}
		players := info.Players
		players[0].ID, players[1].ID = snap.PlayerIDs[0], snap.PlayerIDs[1]
		return hex.NewGame(info.Size, players)
	}

	g, err := notation.Replay(tree, snap.PlayerIDs)
	if err != nil {
		return nil, err
	}
	if !snap.StartedAt.IsZero() {
		g.SetStartedAt(snap.StartedAt)
	}
	return g, nil
}
