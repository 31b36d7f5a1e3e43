package hex

import "ctchen222/Hex/internal/events"

// Event describes a state change of a game. Move and PlayerIndex are set for
// "played" events, Winner and Reason for "ended" events.
type Event struct {
	Name        string
	Move        Move
	PlayerIndex int
	Ply         int
	Winner      int
	Reason      EndReason
}

// On subscribes fn to the game events called name (events.Played or
// events.Ended). Listeners run synchronously inside the mutating call, before
// it returns, and must not mutate the game.
func (g *Game) On(name string, fn func(Event)) (off func()) {
	return g.events.On(name, fn)
}

// OnPlayed subscribes fn to every accepted move.
func (g *Game) OnPlayed(fn func(m Move, playerIndex int)) (off func()) {
	return g.events.On(events.Played, func(e Event) {
		fn(e.Move, e.PlayerIndex)
	})
}

// OnEnded subscribes fn to the game's terminal transition. winner is NoPlayer
// for a canceled game.
func (g *Game) OnEnded(fn func(winner int, reason EndReason)) (off func()) {
	return g.events.On(events.Ended, func(e Event) {
		fn(e.Winner, e.Reason)
	})
}

func (g *Game) emitPlayed(m Move, playerIndex int) {
	g.events.Emit(events.Played, Event{
		Name:        events.Played,
		Move:        m,
		PlayerIndex: playerIndex,
		Ply:         len(g.history),
		Winner:      NoPlayer,
	})
}

func (g *Game) emitEnded() {
	g.events.Emit(events.Ended, Event{
		Name:        events.Ended,
		PlayerIndex: NoPlayer,
		Winner:      g.winner,
		Reason:      g.reason,
	})
}
