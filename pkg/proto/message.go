package proto

import (
	"ctchen222/Hex/internal/hex"
	"time"
)

// Client message types.
const (
	TypeMove   = "move"
	TypeSwap   = "swap"
	TypeResign = "resign"
)

// Server message types besides the event envelopes.
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientToServerMessage is sent by a seated player over the websocket, e.g.
// {"type":"move","position":[2,3]}.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move swap resign"`
	Position []int  `json:"position,omitempty" validate:"omitempty,len=2,dive,gte=0"`
}

// ServerToClientMessage carries a full game view or an error. Game events
// are sent as events.Envelope instead.
type ServerToClientMessage struct {
	Type  string    `json:"type" validate:"required"`
	Seat  *int      `json:"seat,omitempty"`
	Game  *GameView `json:"game,omitempty"`
	Error string    `json:"error,omitempty"`
}

// MoveView is one history entry.
type MoveView struct {
	Player   int    `json:"player"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Swap     bool   `json:"swap,omitempty"`
	Notation string `json:"notation"`
}

// GameView is the public state of a game, shared by the HTTP API and the
// websocket.
type GameView struct {
	ID            string        `json:"id"`
	Size          int           `json:"size"`
	State         string        `json:"state"`
	Players       [2]hex.Player `json:"players"`
	CurrentPlayer int           `json:"current_player"`
	Winner        int           `json:"winner"`
	Reason        string        `json:"reason,omitempty"`
	SwapUsed      bool          `json:"swap_used"`
	Board         []string      `json:"board"`
	Moves         []MoveView    `json:"moves"`
	WinningPath   []hex.Coord   `json:"winning_path,omitempty"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
}
