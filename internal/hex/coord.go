package hex

import "fmt"

// Coord identifies a board cell by 0-indexed row and column.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// neighborOffsets lists the six hexagonal directions of the rhombus layout,
// where each row is shifted half a cell to the right of the row above it.
// Row 0 and the last row are player 0's borders, the first and last columns
// are player 1's. The rendering layer draws the board with the same offsets.
var neighborOffsets = [6]Coord{
	{Row: -1, Col: 0},
	{Row: -1, Col: 1},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
	{Row: 1, Col: -1},
	{Row: 1, Col: 0},
}

func (c Coord) add(o Coord) Coord {
	return Coord{Row: c.Row + o.Row, Col: c.Col + o.Col}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}
