package notation

import (
	"ctchen222/Hex/internal/hex"
	"fmt"
	"strconv"
)

// MaxSize is the largest board whose columns fit in a single letter.
const MaxSize = 26

const swapValue = "swap-pieces"

// FormatCoord renders c as column letter plus 1-based row, e.g. (2,0) -> "a3".
func FormatCoord(c hex.Coord) string {
	return string(rune('a'+c.Col)) + strconv.Itoa(c.Row+1)
}

// FormatMove renders m the way it appears inside a B[] or W[] property.
func FormatMove(m hex.Move) string {
	if m.IsSwap() {
		return swapValue
	}
	return FormatCoord(m.Coord())
}

// ParseCoord is the inverse of FormatCoord. The result is checked against a
// board of the given size.
func ParseCoord(s string, size int) (hex.Coord, error) {
	if len(s) < 2 || s[0] < 'a' || s[0] > 'z' {
		return hex.Coord{}, fmt.Errorf("%w: bad coordinate %q", hex.ErrParse, s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || s[1] == '+' || s[1] == '0' {
		return hex.Coord{}, fmt.Errorf("%w: bad coordinate %q", hex.ErrParse, s)
	}
	c := hex.Coord{Row: row - 1, Col: int(s[0] - 'a')}
	if c.Row < 0 || c.Row >= size || c.Col >= size {
		return hex.Coord{}, fmt.Errorf("%w: coordinate %q is off a %dx%d board", hex.ErrParse, s, size, size)
	}
	return c, nil
}

// ParseMove reads a move value, either a coordinate or the swap marker.
func ParseMove(s string, size int) (hex.Move, error) {
	if s == swapValue {
		return hex.SwapMove(), nil
	}
	c, err := ParseCoord(s, size)
	if err != nil {
		return hex.Move{}, err
	}
	return hex.NewMove(c.Row, c.Col), nil
}
