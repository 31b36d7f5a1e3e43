package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetricsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetricsWith(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.MoveAccepted(ctx, false)
	m.MoveAccepted(ctx, true)
	m.MoveRejected(ctx, "occupied")
	m.GameEnded(ctx, "path")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	totals := map[string]int64{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, metric.Name)
		for _, dp := range sum.DataPoints {
			totals[metric.Name] += dp.Value
		}
	}

	assert.Equal(t, map[string]int64{
		"hex.moves.accepted": 2,
		"hex.moves.rejected": 1,
		"hex.games.ended":    1,
	}, totals)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.MoveAccepted(context.Background(), false)
		m.MoveRejected(context.Background(), "occupied")
		m.GameEnded(context.Background(), "path")
	})
}
