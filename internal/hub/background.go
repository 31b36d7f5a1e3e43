package hub

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

const (
	reapInterval = time.Minute
	// finishedGrace keeps finished rooms around for late spectators.
	finishedGrace = 5 * time.Minute
)

// Restore brings every game that was still active in Redis back into memory.
// Games that cannot be rebuilt are logged and skipped.
func (h *Hub) Restore(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "hub.Restore")
	defer span.End()

	ids, err := h.deps.Games.ListActive(ctx)
	if err != nil {
		recordError(span, err, "Could not list active games")
		return 0, err
	}

	restored := 0
	for _, id := range ids {
		if _, err := h.Get(ctx, id); err != nil {
			slog.WarnContext(ctx, "could not restore game", "room.id", id, "error", err)
			span.RecordError(err)
			continue
		}
		restored++
	}
	span.SetAttributes(attribute.Int("game.count", restored))
	slog.InfoContext(ctx, "active games restored", "game.count", restored, "game.listed", len(ids))
	return restored, nil
}

// Run removes finished rooms without clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	slog.InfoContext(ctx, "room reaper started", "reap.interval", reapInterval)
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("room reaper stopping")
			return
		case now := <-ticker.C:
			h.reap(ctx, now)
		}
	}
}

// reap removes rooms whose game ended before now minus finishedGrace and
// that nobody is watching.
func (h *Hub) reap(ctx context.Context, now time.Time) int {
	ctx, span := tracer.Start(ctx, "hub.reap")
	defer span.End()

	removed := 0
	for _, r := range h.all() {
		if !r.IsOver() || len(r.Clients()) > 0 {
			continue
		}
		endedAt := r.View().EndedAt
		if endedAt == nil || now.Sub(*endedAt) < finishedGrace {
			continue
		}
		h.Remove(ctx, r.ID)
		removed++
	}
	span.SetAttributes(attribute.Int("room.removed", removed))
	return removed
}
