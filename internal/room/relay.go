package room

import (
	"context"
	"ctchen222/Hex/internal/events"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/notation"
	"ctchen222/Hex/internal/repository"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// onPlayed and onEnded run inside a game call, with r.mu held. They only
// queue envelopes; commit delivers them once the call returned.
func (r *Room) onPlayed(m hex.Move, playerIndex int) {
	r.queue(events.Played, events.PlayedPayload{
		PlayerIndex: playerIndex,
		Row:         m.Row(),
		Col:         m.Col(),
		Swap:        m.IsSwap(),
		Notation:    notation.FormatMove(m),
		Ply:         r.game.MoveCount(),
	})
}

func (r *Room) onEnded(winner int, reason hex.EndReason) {
	r.queue(events.Ended, events.EndedPayload{
		Winner: winner,
		Reason: string(reason),
	})
}

func (r *Room) queue(eventType string, payload any) {
	env, err := events.NewEnvelope(eventType, r.ID, payload)
	if err != nil {
		slog.Error("failed to build event envelope", "room.id", r.ID, "event.type", eventType, "error", err)
		return
	}
	r.pending = append(r.pending, env)
}

// commit relays queued events in order, snapshots the game and archives it
// once it is over. Callers hold r.mu.
func (r *Room) commit(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.commit", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("event.count", len(r.pending)),
	))
	defer span.End()

	pending := r.pending
	r.pending = nil

	for _, env := range pending {
		data, err := json.Marshal(env)
		if err != nil {
			slog.ErrorContext(ctx, "error marshalling event", "room.id", r.ID, "error", err)
			span.RecordError(err)
			continue
		}
		r.sendAll(ctx, data)
		if err := r.deps.Games.Publish(ctx, r.ID, data); err != nil {
			slog.ErrorContext(ctx, "failed to publish event", "room.id", r.ID, "event.type", env.Type, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to publish event")
		}
		if env.Type == events.Ended {
			r.metrics().GameEnded(ctx, string(r.game.EndReason()))
		}
	}

	if err := r.deps.Games.Save(ctx, r.snapshot()); err != nil {
		slog.ErrorContext(ctx, "failed to save game snapshot", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save game snapshot")
	}

	if r.game.IsOver() {
		r.archive(ctx)
	}
}

// Save writes the current snapshot of the game.
func (r *Room) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deps.Games.Save(ctx, r.snapshot())
}

func (r *Room) snapshot() *repository.GameSnapshot {
	initial := r.game.InitialPlayers()
	return &repository.GameSnapshot{
		ID:        r.ID,
		SGF:       notation.Encode(r.game),
		State:     r.game.State().String(),
		PlayerIDs: [2]string{initial[0].ID, initial[1].ID},
		StartedAt: r.game.StartedAt(),
		UpdatedAt: time.Now(),
	}
}

func (r *Room) archive(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.archive", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	if r.deps.Archive == nil {
		return
	}

	initial := r.game.InitialPlayers()
	rec := &repository.ArchivedGame{
		ID:        r.ID,
		Size:      r.game.Size(),
		BlackID:   initial[0].ID,
		BlackName: initial[0].Name,
		WhiteID:   initial[1].ID,
		WhiteName: initial[1].Name,
		State:     r.game.State().String(),
		Winner:    r.game.Winner(),
		Reason:    string(r.game.EndReason()),
		Moves:     r.game.MoveCount(),
		SGF:       notation.Encode(r.game),
		StartedAt: repository.NullTime(r.game.StartedAt()),
		EndedAt:   repository.NullTime(r.game.EndedAt()),
	}
	if w := r.game.Winner(); w != hex.NoPlayer {
		rec.WinnerID = r.game.Players()[w].ID
	}

	if err := r.deps.Archive.Store(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to archive game", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to archive game")
		return
	}
	slog.InfoContext(ctx, "game archived", "room.id", r.ID, "game.state", rec.State, "game.reason", rec.Reason)
}

// sendAll writes data to every connected client. Callers hold r.mu.
func (r *Room) sendAll(ctx context.Context, data []byte) {
	for _, p := range r.clients {
		if err := p.Send(websocket.TextMessage, data); err != nil {
			slog.ErrorContext(ctx, "error writing message to player", "room.id", r.ID, "player.id", p.ID, "error", err)
		}
	}
}

func rejectCause(err error) string {
	switch {
	case errors.Is(err, hex.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, hex.ErrCellOccupied):
		return "occupied"
	case errors.Is(err, hex.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, hex.ErrInvalidTransition):
		return "not_playing"
	case errors.Is(err, hex.ErrInvalidPlayer):
		return "invalid_player"
	default:
		return "illegal"
	}
}
