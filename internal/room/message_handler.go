package room

import (
	"context"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/player"
	"ctchen222/Hex/internal/validator"
	"ctchen222/Hex/pkg/proto"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage decodes, validates and applies one client message. Failures
// are reported back to the sender only.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	if err := r.handle(ctx, p, rawMessage); err != nil {
		slog.WarnContext(ctx, "message from player rejected", "player.id", p.ID, "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Message rejected")
		r.send(ctx, p, &proto.ServerToClientMessage{Type: proto.TypeError, Error: err.Error()})
	}
}

func (r *Room) handle(ctx context.Context, p *player.Player, rawMessage []byte) error {
	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		return fmt.Errorf("malformed message: %w", err)
	}
	if err := validator.Struct(message); err != nil {
		return err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("message.type", message.Type))

	// The seat is resolved under the same lock as the move: a swap moves
	// players between seats.
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatOf(p.ID)
	if seat == hex.NoPlayer {
		return fmt.Errorf("%w: spectators cannot play", hex.ErrInvalidPlayer)
	}

	switch message.Type {
	case proto.TypeMove:
		return r.play(ctx, seat, hex.NewMove(message.Position[0], message.Position[1]))
	case proto.TypeSwap:
		return r.play(ctx, seat, hex.SwapMove())
	case proto.TypeResign:
		return r.concede(ctx, seat, hex.ReasonResignation)
	}
	return nil
}
