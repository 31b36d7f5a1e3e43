package hub

import (
	"context"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/room"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

// Hub manages all the rooms hosted by this process.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room

	deps        room.Deps
	defaultSize int
	maxSize     int
}

// Options bound the games a hub accepts.
type Options struct {
	DefaultSize int
	MaxSize     int
}

// NewHub creates a new hub.
func NewHub(deps room.Deps, opts Options) *Hub {
	return &Hub{
		rooms:       make(map[string]*room.Room),
		deps:        deps,
		defaultSize: opts.DefaultSize,
		maxSize:     opts.MaxSize,
	}
}

// Get returns the room hosting game id. Games that are not in memory are
// restored from their last snapshot.
func (h *Hub) Get(ctx context.Context, id string) (*room.Room, error) {
	h.mu.RLock()
	r, ok := h.rooms[id]
	h.mu.RUnlock()
	if ok {
		return r, nil
	}
	return h.restore(ctx, id)
}

// Remove closes the room hosting game id and forgets it. The snapshot in
// Redis is left to expire.
func (h *Hub) Remove(ctx context.Context, id string) {
	h.mu.Lock()
	r, ok := h.rooms[id]
	delete(h.rooms, id)
	h.mu.Unlock()

	if ok {
		r.Close()
		slog.InfoContext(ctx, "room removed", "room.id", id)
	}
}

// Len returns the number of rooms in memory.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Close closes every room.
func (h *Hub) Close() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*room.Room)
	h.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}

// add hosts g under id. If another goroutine registered id first, its room
// wins and is returned instead.
func (h *Hub) add(ctx context.Context, id string, g *hex.Game) *room.Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.rooms[id]; ok {
		return existing
	}
	r := room.New(id, g, h.deps)
	h.rooms[id] = r
	go r.Run(context.WithoutCancel(ctx))
	return r
}

func (h *Hub) checkSize(size int) error {
	if size < 1 || size > h.maxSize {
		return fmt.Errorf("%w: %d is not between 1 and %d", hex.ErrInvalidSize, size, h.maxSize)
	}
	return nil
}

func (h *Hub) all() []*room.Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*room.Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		out = append(out, r)
	}
	return out
}

func recordError(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

func roomAttrs(id string) trace.SpanStartEventOption {
	return trace.WithAttributes(attribute.String("room.id", id))
}
