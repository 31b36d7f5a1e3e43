package room

import (
	"context"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/player"
	"ctchen222/Hex/internal/repository"
	"ctchen222/Hex/pkg/proto"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Join attaches a client to the room and sends it the current state.
func (r *Room) Join(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.Join", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("player.id", p.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	p.SetStatus(player.StatusConnected)
	if !slices.Contains(r.clients, p) {
		r.clients = append(r.clients, p)
	}

	seat := r.seatOf(p.ID)
	if seat != hex.NoPlayer && r.deps.Presence != nil {
		presence := repository.Presence{GameID: r.ID, Seat: seat, Status: player.StatusConnected}
		if err := r.deps.Presence.SetPresence(ctx, p.ID, presence); err != nil {
			slog.ErrorContext(ctx, "failed to record player presence", "player.id", p.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to record player presence")
		}
	}
	slog.InfoContext(ctx, "player joined room", "room.id", r.ID, "player.id", p.ID, "player.seat", seat)

	r.sendState(ctx, p, seat)
}

// Leave detaches a client and marks it disconnected.
func (r *Room) Leave(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.Leave", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("player.id", p.ID),
	))
	defer span.End()

	p.SetStatus(player.StatusDisconnected)

	r.mu.Lock()
	r.clients = slices.DeleteFunc(r.clients, func(c *player.Player) bool { return c == p })
	seat := r.seatOf(p.ID)
	r.mu.Unlock()

	if seat != hex.NoPlayer && r.deps.Presence != nil {
		if err := r.deps.Presence.UpdateConnectionStatus(ctx, p.ID, player.StatusDisconnected); err != nil {
			slog.ErrorContext(ctx, "failed to set player status to disconnected", "player.id", p.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to set player status to disconnected")
		}
	}
	slog.InfoContext(ctx, "player left room", "room.id", r.ID, "player.id", p.ID)
}

// Clients returns the currently attached clients.
func (r *Room) Clients() []*player.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.clients)
}

// ReadPump feeds messages from p's connection to HandleMessage until the
// connection fails, then detaches p.
func (r *Room) ReadPump(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	defer func() {
		p.Conn.Close()
		r.Leave(ctx, p)
	}()

	for {
		msgType, msg, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Player connection error")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		r.HandleMessage(ctx, p, msg)
	}
}

// broadcastState sends the full view to every client. Callers hold r.mu.
func (r *Room) broadcastState(ctx context.Context) {
	for _, p := range r.clients {
		r.sendState(ctx, p, r.seatOf(p.ID))
	}
}

func (r *Room) sendState(ctx context.Context, p *player.Player, seat int) {
	msg := &proto.ServerToClientMessage{Type: proto.TypeState, Game: r.view()}
	if seat != hex.NoPlayer {
		msg.Seat = &seat
	}
	r.send(ctx, p, msg)
}

func (r *Room) send(ctx context.Context, p *player.Player, msg *proto.ServerToClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return
	}
	if err := p.Send(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to player", "room.id", r.ID, "player.id", p.ID, "error", err)
	}
}
