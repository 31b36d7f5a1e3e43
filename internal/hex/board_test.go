package hex

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewBoard(t *testing.T) {
	for _, size := range []int{1, 2, 4, 11, 19} {
		b, err := NewBoard(size)
		if err != nil {
			t.Fatalf("NewBoard(%d) error = %v", size, err)
		}
		if got := b.Count(Empty); got != size*size {
			t.Errorf("NewBoard(%d) has %d empty cells, want %d", size, got, size*size)
		}
	}

	for _, size := range []int{0, -3} {
		if _, err := NewBoard(size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewBoard(%d) error = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestBoardGetSet(t *testing.T) {
	b, _ := NewBoard(3)

	if err := b.Set(Coord{Row: 1, Col: 2}, 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	cell, err := b.Get(Coord{Row: 1, Col: 2})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cell != Player1 || cell.Owner() != 1 {
		t.Errorf("Get() = %v (owner %d), want Player1", cell, cell.Owner())
	}

	if err := b.Set(Coord{Row: 1, Col: 2}, 0); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("Set() on occupied cell error = %v, want ErrCellOccupied", err)
	}
	if cell, _ := b.Get(Coord{Row: 1, Col: 2}); cell != Player1 {
		t.Errorf("failed Set() changed the cell to %v", cell)
	}

	if err := b.Set(Coord{Row: 0, Col: 0}, 2); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("Set() with player 2 error = %v, want ErrInvalidPlayer", err)
	}
}

func TestBoardOutOfBounds(t *testing.T) {
	b, _ := NewBoard(3)
	cases := []Coord{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}}
	for _, c := range cases {
		if _, err := b.Get(c); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Get(%v) error = %v, want ErrOutOfBounds", c, err)
		}
		if err := b.Set(c, 0); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%v) error = %v, want ErrOutOfBounds", c, err)
		}
	}
}

func TestBoardNeighbors(t *testing.T) {
	b, _ := NewBoard(4)

	tests := []struct {
		name  string
		coord Coord
		want  []Coord
	}{
		{
			name:  "top left corner",
			coord: Coord{0, 0},
			want:  []Coord{{0, 1}, {1, 0}},
		},
		{
			name:  "top right corner",
			coord: Coord{0, 3},
			want:  []Coord{{0, 2}, {1, 2}, {1, 3}},
		},
		{
			name:  "bottom left corner",
			coord: Coord{3, 0},
			want:  []Coord{{2, 0}, {2, 1}, {3, 1}},
		},
		{
			name:  "inner cell has six neighbours",
			coord: Coord{1, 1},
			want:  []Coord{{0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}},
		},
		{
			name:  "bottom edge",
			coord: Coord{3, 2},
			want:  []Coord{{2, 2}, {2, 3}, {3, 1}, {3, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Neighbors(tt.coord)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Neighbors(%v) = %v, want %v", tt.coord, got, tt.want)
			}
		})
	}
}

func TestBoardNeighborsAreSymmetric(t *testing.T) {
	b, _ := NewBoard(5)
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			from := Coord{r, c}
			for _, n := range b.Neighbors(from) {
				found := false
				for _, back := range b.Neighbors(n) {
					if back == from {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("%v is a neighbour of %v but not the other way round", n, from)
				}
			}
		}
	}
}

func TestBoardCellsIsACopy(t *testing.T) {
	b, _ := NewBoard(2)
	_ = b.Set(Coord{0, 1}, 0)

	cells := b.Cells()
	cells[0][1] = Player1
	cells[1][1] = Player0

	if got, _ := b.Get(Coord{0, 1}); got != Player0 {
		t.Errorf("modifying Cells() changed the board: %v", got)
	}
	if b.Count(Empty) != 3 {
		t.Errorf("modifying Cells() changed the board, %d empty cells", b.Count(Empty))
	}
}

func TestBoardString(t *testing.T) {
	b, _ := NewBoard(3)
	_ = b.Set(Coord{0, 0}, 0)
	_ = b.Set(Coord{1, 2}, 1)

	want := "0 . .\n . . 1\n  . . .\n"
	if got := b.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
