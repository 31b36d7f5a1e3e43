package room

import (
	"context"
	"ctchen222/Hex/internal/events"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/player"
	"ctchen222/Hex/internal/repository"
	"ctchen222/Hex/internal/telemetry"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const heartbeatInterval = 10 * time.Second

var tracer = otel.Tracer("room")

// Deps are the collaborators shared by every room.
type Deps struct {
	Games    repository.GameRepository
	Archive  repository.ArchiveRepository
	Presence repository.PlayerRepository
	Metrics  *telemetry.Metrics
	// MoveTimeout ends a game by timeout when the player to move stays idle.
	// Zero disables it.
	MoveTimeout time.Duration
}

// Room hosts one game. All access to the game goes through the room mutex, so
// the engine itself never sees concurrent calls.
type Room struct {
	ID string

	mu      sync.Mutex
	game    *hex.Game
	clients []*player.Player
	pending []events.Envelope
	deps    Deps

	moveTimer *time.Timer
	done      chan struct{}
	closeOnce sync.Once
}

// New wraps g, which may be fresh or restored from a record.
func New(id string, g *hex.Game, deps Deps) *Room {
	r := &Room{
		ID:      id,
		game:    g,
		clients: make([]*player.Player, 0, 2),
		deps:    deps,
		done:    make(chan struct{}),
	}
	g.OnPlayed(r.onPlayed)
	g.OnEnded(r.onEnded)
	if g.State() == hex.StateStarted {
		r.resetMoveTimer()
	}
	return r
}

// Start moves the game from created to playing.
func (r *Room) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "room.Start", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.game.Start(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not start game")
		return err
	}
	slog.InfoContext(ctx, "game started", "room.id", r.ID, "game.size", r.game.Size())
	r.resetMoveTimer()
	r.commit(ctx)
	r.broadcastState(ctx)
	return nil
}

// Play submits m for the player at turn index seat.
func (r *Room) Play(ctx context.Context, seat int, m hex.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.play(ctx, seat, m)
}

func (r *Room) play(ctx context.Context, seat int, m hex.Move) error {
	ctx, span := tracer.Start(ctx, "room.Play", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("move.player", seat),
		attribute.String("move", m.String()),
	))
	defer span.End()

	if err := r.game.Move(m, seat); err != nil {
		slog.WarnContext(ctx, "move rejected", "room.id", r.ID, "move.player", seat, "move", m.String(), "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		r.metrics().MoveRejected(ctx, rejectCause(err))
		return err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))
	r.metrics().MoveAccepted(ctx, m.IsSwap())
	r.resetMoveTimer()
	r.commit(ctx)
	return nil
}

// Resign ends the game in favour of the opponent of seat.
func (r *Room) Resign(ctx context.Context, seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.concede(ctx, seat, hex.ReasonResignation)
}

// Forfeit ends the game in favour of the opponent of seat, e.g. after the
// player left for good.
func (r *Room) Forfeit(ctx context.Context, seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.concede(ctx, seat, hex.ReasonForfeit)
}

// concede declares the opponent of seat the winner. Callers hold r.mu.
func (r *Room) concede(ctx context.Context, seat int, reason hex.EndReason) error {
	ctx, span := tracer.Start(ctx, "room.concede", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("player.seat", seat),
		attribute.String("game.reason", string(reason)),
	))
	defer span.End()

	if seat != 0 && seat != 1 {
		err := fmt.Errorf("%w: seat %d", hex.ErrInvalidPlayer, seat)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid seat")
		return err
	}
	if err := r.game.DeclareWinner(1-seat, reason); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not end game")
		return err
	}
	r.resetMoveTimer()
	r.commit(ctx)
	return nil
}

// Cancel voids the game.
func (r *Room) Cancel(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "room.Cancel", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.game.Cancel(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not cancel game")
		return err
	}
	r.resetMoveTimer()
	r.commit(ctx)
	return nil
}

// Run sends heartbeats and enforces the move timeout until the room is closed.
func (r *Room) Run(ctx context.Context) {
	pingTicker := time.NewTicker(heartbeatInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			slog.Info("room run goroutine stopping", "room.id", r.ID)
			return
		case <-pingTicker.C:
			r.ping()
		}
	}
}

func (r *Room) ping() {
	for _, p := range r.Clients() {
		if err := p.Send(websocket.PingMessage, nil); err != nil {
			slog.Warn("failed to send ping to player, assuming disconnect", "room.id", r.ID, "player.id", p.ID, "error", err)
		}
	}
}

// resetMoveTimer arms the timeout for the player now to move. Callers hold r.mu.
func (r *Room) resetMoveTimer() {
	if r.moveTimer != nil {
		r.moveTimer.Stop()
		r.moveTimer = nil
	}
	if r.deps.MoveTimeout <= 0 || r.game.IsOver() {
		return
	}
	ply := r.game.MoveCount()
	r.moveTimer = time.AfterFunc(r.deps.MoveTimeout, func() {
		r.timeout(ply)
	})
}

// timeout ends the game if nobody moved since ply.
func (r *Room) timeout(ply int) {
	ctx, span := tracer.Start(context.Background(), "room.timeout", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-r.done:
		return
	default:
	}
	if r.game.IsOver() || r.game.MoveCount() != ply {
		return
	}
	idle := r.game.CurrentPlayer()
	slog.InfoContext(ctx, "player timed out", "room.id", r.ID, "player.seat", idle)
	if err := r.game.DeclareWinner(1-idle, hex.ReasonTimeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not end game on timeout")
		return
	}
	r.moveTimer = nil
	r.commit(ctx)
}

// Close stops the room's goroutines. Clients are left to the caller.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		if r.moveTimer != nil {
			r.moveTimer.Stop()
		}
		r.mu.Unlock()
		close(r.done)
	})
}

// Done is closed by Close.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// IsOver reports whether the hosted game reached a terminal state.
func (r *Room) IsOver() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.IsOver()
}

func (r *Room) metrics() *telemetry.Metrics {
	return r.deps.Metrics
}
