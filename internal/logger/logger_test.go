package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelDebug, ParseLevel("verbose"))
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", false)

	log.Info("hidden")
	log.Warn("shown", "game.id", "g1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "game.id=g1")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))

	log := slog.New(h).With("room.id", "r1").WithGroup("move")
	log.Error("boom", "row", 2)

	assert.Contains(t, a.String(), "room.id=r1")
	assert.Contains(t, a.String(), "move.row=2")
	assert.Contains(t, b.String(), "boom")
}

func TestMultiHandlerSkipsDisabledHandlers(t *testing.T) {
	var info, errs bytes.Buffer
	log := slog.New(NewMultiHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	log.Info("move accepted")

	assert.Contains(t, info.String(), "move accepted")
	assert.Empty(t, errs.String())
}
