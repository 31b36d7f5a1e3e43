package hex

// Move is either a stone placement or the swap (pie rule) move. Whether a
// move is legal depends on the game it is submitted to.
type Move struct {
	coord Coord
	swap  bool
}

// NewMove returns a placement at row, col.
func NewMove(row, col int) Move {
	return Move{coord: Coord{Row: row, Col: col}}
}

// SwapMove returns the swap move.
func SwapMove() Move {
	return Move{swap: true}
}

// IsSwap reports whether m is the swap move.
func (m Move) IsSwap() bool { return m.swap }

// Coord returns the placement cell. For a swap move recorded in a game's
// history this is the cell of the first move.
func (m Move) Coord() Coord { return m.coord }

func (m Move) Row() int { return m.coord.Row }
func (m Move) Col() int { return m.coord.Col }

func (m Move) String() string {
	if m.swap {
		return "swap" + m.coord.String()
	}
	return m.coord.String()
}

// PlayedMove is one entry of a game's history.
type PlayedMove struct {
	Move        Move
	PlayerIndex int
}
