package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the game counters. A nil *Metrics records nothing.
type Metrics struct {
	movesAccepted metric.Int64Counter
	movesRejected metric.Int64Counter
	gamesEnded    metric.Int64Counter
}

// NewMetrics registers the counters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWith(otel.Meter(serviceName))
}

// NewMetricsWith registers the counters on meter.
func NewMetricsWith(meter metric.Meter) (*Metrics, error) {
	accepted, err := meter.Int64Counter("hex.moves.accepted",
		metric.WithDescription("Moves applied to a game"))
	if err != nil {
		return nil, fmt.Errorf("failed to create hex.moves.accepted counter: %w", err)
	}
	rejected, err := meter.Int64Counter("hex.moves.rejected",
		metric.WithDescription("Moves refused by the engine"))
	if err != nil {
		return nil, fmt.Errorf("failed to create hex.moves.rejected counter: %w", err)
	}
	ended, err := meter.Int64Counter("hex.games.ended",
		metric.WithDescription("Games that reached a terminal state"))
	if err != nil {
		return nil, fmt.Errorf("failed to create hex.games.ended counter: %w", err)
	}
	return &Metrics{movesAccepted: accepted, movesRejected: rejected, gamesEnded: ended}, nil
}

func (m *Metrics) MoveAccepted(ctx context.Context, swap bool) {
	if m == nil {
		return
	}
	m.movesAccepted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("move.swap", swap)))
}

func (m *Metrics) MoveRejected(ctx context.Context, cause string) {
	if m == nil {
		return
	}
	m.movesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("move.error", cause)))
}

func (m *Metrics) GameEnded(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.gamesEnded.Add(ctx, 1, metric.WithAttributes(attribute.String("game.reason", reason)))
}
