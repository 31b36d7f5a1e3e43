package hex

import (
	"fmt"
	"strings"
)

// Cell is the ownership state of a board cell.
type Cell uint8

const (
	Empty Cell = iota
	Player0
	Player1
)

// CellOf returns the cell value owned by the given player index.
func CellOf(playerIndex int) Cell {
	return Cell(playerIndex + 1)
}

// Owner returns the owning player index, or NoPlayer for an empty cell.
func (c Cell) Owner() int {
	if c == Empty {
		return NoPlayer
	}
	return int(c) - 1
}

func (c Cell) String() string {
	switch c {
	case Player0:
		return "0"
	case Player1:
		return "1"
	default:
		return "."
	}
}

// Board is a size×size grid of cells stored row-major.
type Board struct {
	size  int
	cells []Cell
}

// NewBoard returns an empty board. size must be at least 1.
func NewBoard(size int) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Board{
		size:  size,
		cells: make([]Cell, size*size),
	}, nil
}

// Size returns the number of rows (and columns).
func (b *Board) Size() int {
	return b.size
}

// InBounds reports whether c lies on the board.
func (b *Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.size && c.Col >= 0 && c.Col < b.size
}

func (b *Board) index(c Coord) int {
	return c.Row*b.size + c.Col
}

// Get returns the state of the cell at c.
func (b *Board) Get(c Coord) (Cell, error) {
	if !b.InBounds(c) {
		return Empty, fmt.Errorf("%w: %s on board of size %d", ErrOutOfBounds, c, b.size)
	}
	return b.cells[b.index(c)], nil
}

// Set gives the cell at c to playerIndex. The cell must be empty.
// Connectivity is not updated here.
func (b *Board) Set(c Coord, playerIndex int) error {
	if playerIndex != 0 && playerIndex != 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, playerIndex)
	}
	cell, err := b.Get(c)
	if err != nil {
		return err
	}
	if cell != Empty {
		return fmt.Errorf("%w: %s", ErrCellOccupied, c)
	}
	b.cells[b.index(c)] = CellOf(playerIndex)
	return nil
}

// Neighbors returns the in-bounds neighbours of c, always in the order of
// neighborOffsets.
func (b *Board) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(neighborOffsets))
	for _, o := range neighborOffsets {
		if n := c.add(o); b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Count returns how many cells hold the given state.
func (b *Board) Count(state Cell) int {
	n := 0
	for _, c := range b.cells {
		if c == state {
			n++
		}
	}
	return n
}

// Cells returns a copy of the grid indexed [row][col].
func (b *Board) Cells() [][]Cell {
	out := make([][]Cell, b.size)
	for r := range out {
		out[r] = make([]Cell, b.size)
		copy(out[r], b.cells[r*b.size:(r+1)*b.size])
	}
	return out
}

// String renders the board as a skewed ASCII rhombus, one row per line.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		sb.WriteString(strings.Repeat(" ", r))
		for c := 0; c < b.size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.cells[r*b.size+c].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
