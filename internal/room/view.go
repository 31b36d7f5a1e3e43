package room

import (
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/notation"
	"ctchen222/Hex/pkg/proto"
	"strings"
	"time"
)

// View returns the public state of the game.
func (r *Room) View() *proto.GameView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view()
}

// SGF returns the game record.
func (r *Room) SGF() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return notation.Encode(r.game)
}

// SeatOf returns the turn order index of the player with id, or
// hex.NoPlayer for spectators. Seats follow the players through a swap.
func (r *Room) SeatOf(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seatOf(id)
}

func (r *Room) seatOf(id string) int {
	if id == "" {
		return hex.NoPlayer
	}
	for i, p := range r.game.Players() {
		if p.ID == id {
			return i
		}
	}
	return hex.NoPlayer
}

func (r *Room) view() *proto.GameView {
	g := r.game
	v := &proto.GameView{
		ID:            r.ID,
		Size:          g.Size(),
		State:         g.State().String(),
		Players:       g.Players(),
		CurrentPlayer: g.CurrentPlayer(),
		Winner:        g.Winner(),
		Reason:        string(g.EndReason()),
		SwapUsed:      g.SwapUsed(),
		Board:         boardRows(g.Board()),
		WinningPath:   g.WinningPath(),
		StartedAt:     timePtr(g.StartedAt()),
		EndedAt:       timePtr(g.EndedAt()),
	}

	history := g.History()
	v.Moves = make([]proto.MoveView, len(history))
	for i, pm := range history {
		v.Moves[i] = proto.MoveView{
			Player:   pm.PlayerIndex,
			Row:      pm.Move.Row(),
			Col:      pm.Move.Col(),
			Swap:     pm.Move.IsSwap(),
			Notation: notation.FormatMove(pm.Move),
		}
	}
	return v
}

// boardRows renders each row as a string of '.', '0' and '1'.
func boardRows(cells [][]hex.Cell) []string {
	rows := make([]string, len(cells))
	for i, row := range cells {
		var sb strings.Builder
		for _, c := range row {
			sb.WriteString(c.String())
		}
		rows[i] = sb.String()
	}
	return rows
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
