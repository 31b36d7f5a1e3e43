package hub

import (
	"context"
	"ctchen222/Hex/internal/events"
	"encoding/json"
	"log/slog"
)

// Watch streams the events published for game id, including those relayed
// by other processes sharing the same Redis. The stream ends when ctx is
// done or stop is called.
func (h *Hub) Watch(ctx context.Context, id string) (<-chan events.Envelope, func() error, error) {
	ctx, span := tracer.Start(ctx, "hub.Watch", roomAttrs(id))
	defer span.End()

	if _, err := h.Get(ctx, id); err != nil {
		recordError(span, err, "Unknown game")
		return nil, nil, err
	}

	payloads, stop, err := h.deps.Games.Subscribe(ctx, id)
	if err != nil {
		recordError(span, err, "Could not subscribe to game events")
		return nil, nil, err
	}

	out := make(chan events.Envelope)
	go func() {
		defer close(out)
		for payload := range payloads {
			var env events.Envelope
			if err := json.Unmarshal(payload, &env); err != nil {
				slog.ErrorContext(ctx, "could not unmarshal game event", "room.id", id, "error", err)
				continue
			}
			select {
			case out <- env:
			case <-ctx.Done():
				stop()
				return
			}
		}
	}()
	return out, stop, nil
}
