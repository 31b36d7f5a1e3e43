package hex

import (
	"ctchen222/Hex/internal/events"
	"fmt"
	"time"
)

// NoPlayer stands for "no player", e.g. the winner of an undecided game.
const NoPlayer = -1

// State is a game lifecycle state.
type State uint8

const (
	StateCreated State = iota
	StateStarted
	StateEnded
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "playing"
	case StateEnded:
		return "ended"
	case StateCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// EndReason explains why a game reached a terminal state.
type EndReason string

const (
	ReasonNone         EndReason = ""
	ReasonConnection   EndReason = "path"
	ReasonResignation  EndReason = "resign"
	ReasonTimeout      EndReason = "time"
	ReasonForfeit      EndReason = "forfeit"
	ReasonCancellation EndReason = "cancel"
)

// Declarable reports whether r can be passed to DeclareWinner.
func (r EndReason) Declarable() bool {
	return r == ReasonResignation || r == ReasonTimeout || r == ReasonForfeit
}

// Player is the identity bound to a seat. The engine never looks at it.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Game is the authoritative state of one match. It owns its board, its
// connectivity forests and its move history.
//
// A Game is not safe for concurrent use: hosts must serialize calls per game.
type Game struct {
	size     int
	players  [2]Player
	initial  [2]Player
	board    *Board
	conn     *connectivity
	history  []PlayedMove
	state    State
	winner   int
	reason   EndReason
	swapUsed bool
	path     []Coord

	startedAt time.Time
	endedAt   time.Time

	events *events.Registry[Event]
	now    func() time.Time
}

// Option configures a Game.
type Option func(*Game)

// WithClock replaces time.Now for the game's timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		g.now = now
	}
}

// NewGame returns a game in the Created state with players seated in order.
func NewGame(size int, players [2]Player, opts ...Option) (*Game, error) {
	board, err := NewBoard(size)
	if err != nil {
		return nil, err
	}
	g := &Game{
		size:    size,
		players: players,
		initial: players,
		board:   board,
		conn:    newConnectivity(size),
		history: make([]PlayedMove, 0, size*size),
		state:   StateCreated,
		winner:  NoPlayer,
		events:  events.NewRegistry[Event](),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Start makes the game playable.
func (g *Game) Start() error {
	if g.state != StateCreated {
		return fmt.Errorf("%w: cannot start a game that is %s", ErrInvalidTransition, g.state)
	}
	g.state = StateStarted
	g.startedAt = g.now()
	return nil
}

// CheckMove validates m against the current position without changing it.
func (g *Game) CheckMove(m Move) error {
	if g.state != StateStarted {
		return illegal(ErrInvalidTransition, "game is %s", g.state)
	}

	if m.swap {
		if len(g.history) != 1 {
			return illegal(nil, "swap is only allowed as the second move")
		}
		return nil
	}

	cell, err := g.board.Get(m.coord)
	if err != nil {
		return illegal(ErrOutOfBounds, "%s is outside a board of size %d", m.coord, g.size)
	}
	if cell != Empty {
		return illegal(ErrCellOccupied, "%s is already occupied", m.coord)
	}
	return nil
}

// Move plays m for playerIndex, which must be the player whose turn it is.
// It emits "played", then "ended" if the move won the game.
func (g *Game) Move(m Move, playerIndex int) error {
	if g.state != StateStarted {
		return illegal(ErrInvalidTransition, "game is %s", g.state)
	}
	if playerIndex != 0 && playerIndex != 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, playerIndex)
	}
	if m.swap && playerIndex != 1 {
		return illegal(nil, "only the second player can swap")
	}
	if current := g.CurrentPlayer(); playerIndex != current {
		return fmt.Errorf("%w: player %d tried to play, player %d expected", ErrNotYourTurn, playerIndex, current)
	}
	if err := g.CheckMove(m); err != nil {
		return err
	}

	if m.swap {
		m.coord = g.history[0].Move.coord
		g.players[0], g.players[1] = g.players[1], g.players[0]
		g.swapUsed = true
	} else {
		// Cannot fail: CheckMove already saw the cell in bounds and empty.
		_ = g.board.Set(m.coord, playerIndex)
		g.conn.place(g.board, m.coord, playerIndex)
	}
	g.history = append(g.history, PlayedMove{Move: m, PlayerIndex: playerIndex})

	won := g.conn.connected(playerIndex)
	if won {
		g.path = g.conn.winningPath(g.board, playerIndex)
		g.finish(StateEnded, playerIndex, ReasonConnection)
	}

	g.emitPlayed(m, playerIndex)
	if won {
		g.emitEnded()
	}
	return nil
}

// DeclareWinner ends a started game for a reason other than a connection,
// such as a resignation or a timeout.
func (g *Game) DeclareWinner(playerIndex int, reason EndReason) error {
	if g.state != StateStarted {
		return fmt.Errorf("%w: cannot declare a winner of a game that is %s", ErrInvalidTransition, g.state)
	}
	if playerIndex != 0 && playerIndex != 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, playerIndex)
	}
	if !reason.Declarable() {
		return fmt.Errorf("%w: %q cannot be declared", ErrInvalidReason, reason)
	}
	g.finish(StateEnded, playerIndex, reason)
	g.emitEnded()
	return nil
}

// Cancel abandons a game that cannot be completed. There is no winner.
func (g *Game) Cancel() error {
	if g.state != StateCreated && g.state != StateStarted {
		return fmt.Errorf("%w: cannot cancel a game that is %s", ErrInvalidTransition, g.state)
	}
	g.finish(StateCanceled, NoPlayer, ReasonCancellation)
	g.emitEnded()
	return nil
}

func (g *Game) finish(state State, winner int, reason EndReason) {
	g.state = state
	g.winner = winner
	g.reason = reason
	g.endedAt = g.now()
}

// SetStartedAt overrides the start timestamp, for games restored from storage.
func (g *Game) SetStartedAt(t time.Time) {
	g.startedAt = t
}

// Size returns the board size.
func (g *Game) Size() int { return g.size }

// State returns the lifecycle state.
func (g *Game) State() State { return g.state }

// IsOver reports whether the game reached a terminal state.
func (g *Game) IsOver() bool {
	return g.state == StateEnded || g.state == StateCanceled
}

// CurrentPlayer returns the index expected to move next, or NoPlayer once the
// game is over. Turns alternate 0, 1, 0, 1… whether or not swap was used.
func (g *Game) CurrentPlayer() int {
	if g.IsOver() {
		return NoPlayer
	}
	return len(g.history) % 2
}

// Winner returns the winning player index, or NoPlayer.
func (g *Game) Winner() int { return g.winner }

// EndReason returns why the game ended, or ReasonNone.
func (g *Game) EndReason() EndReason { return g.reason }

// Players returns the current seat bindings.
func (g *Game) Players() [2]Player { return g.players }

// InitialPlayers returns the seat bindings as they were before any swap.
func (g *Game) InitialPlayers() [2]Player { return g.initial }

// SwapUsed reports whether the swap move was played.
func (g *Game) SwapUsed() bool { return g.swapUsed }

// History returns a copy of the applied moves, in order.
func (g *Game) History() []PlayedMove {
	out := make([]PlayedMove, len(g.history))
	copy(out, g.history)
	return out
}

// MoveCount returns the number of applied moves.
func (g *Game) MoveCount() int { return len(g.history) }

// LastMove returns the most recent move, if any.
func (g *Game) LastMove() (PlayedMove, bool) {
	if len(g.history) == 0 {
		return PlayedMove{}, false
	}
	return g.history[len(g.history)-1], true
}

// Cell returns the state of one cell.
func (g *Game) Cell(c Coord) (Cell, error) { return g.board.Get(c) }

// Board returns a copy of the grid indexed [row][col].
func (g *Game) Board() [][]Cell { return g.board.Cells() }

// BoardString renders the board for logs.
func (g *Game) BoardString() string { return g.board.String() }

// WinningPath returns the chain of stones that won by connection, from the
// winner's start border to their end border.
func (g *Game) WinningPath() []Coord {
	out := make([]Coord, len(g.path))
	copy(out, g.path)
	return out
}

// StartedAt returns when the game started, or the zero time.
func (g *Game) StartedAt() time.Time { return g.startedAt }

// EndedAt returns when the game ended, or the zero time.
func (g *Game) EndedAt() time.Time { return g.endedAt }
