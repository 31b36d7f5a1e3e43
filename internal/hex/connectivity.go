package hex

// connectivity tracks, per player, which stones are linked to that player's
// two target borders. Player 0 links the top row to the bottom row, player 1
// the left column to the right column.
//
// Each forest has size²+2 elements: one per cell, then the virtual start and
// end border nodes. It is updated on every placement and never rebuilt.
type connectivity struct {
	size    int
	forests [2]*unionFind
}

func newConnectivity(size int) *connectivity {
	n := size*size + 2
	return &connectivity{
		size:    size,
		forests: [2]*unionFind{newUnionFind(n), newUnionFind(n)},
	}
}

func (cn *connectivity) startNode() int { return cn.size * cn.size }
func (cn *connectivity) endNode() int   { return cn.size*cn.size + 1 }

func (cn *connectivity) node(c Coord) int {
	return c.Row*cn.size + c.Col
}

// onStartBorder reports whether c touches the first of p's target borders.
func (cn *connectivity) onStartBorder(c Coord, p int) bool {
	if p == 0 {
		return c.Row == 0
	}
	return c.Col == 0
}

func (cn *connectivity) onEndBorder(c Coord, p int) bool {
	if p == 0 {
		return c.Row == cn.size-1
	}
	return c.Col == cn.size-1
}

// place records a stone of player p at c. The board must already hold it.
func (cn *connectivity) place(b *Board, c Coord, p int) {
	uf := cn.forests[p]
	n := cn.node(c)

	if cn.onStartBorder(c, p) {
		uf.union(n, cn.startNode())
	}
	if cn.onEndBorder(c, p) {
		uf.union(n, cn.endNode())
	}

	own := CellOf(p)
	for _, nb := range b.Neighbors(c) {
		if b.cells[b.index(nb)] == own {
			uf.union(n, cn.node(nb))
		}
	}
}

// connected reports whether p has linked both target borders.
func (cn *connectivity) connected(p int) bool {
	return cn.forests[p].same(cn.startNode(), cn.endNode())
}

// winningPath returns one chain of p's stones joining both borders, ordered
// from the start border to the end border, or nil if p is not connected.
// It runs a breadth-first search restricted to the connected set, so it is
// only called once when a game ends.
func (cn *connectivity) winningPath(b *Board, p int) []Coord {
	if !cn.connected(p) {
		return nil
	}
	uf := cn.forests[p]
	root := uf.find(cn.startNode())
	own := CellOf(p)

	prev := make(map[Coord]Coord)
	queue := make([]Coord, 0, cn.size)
	for i := 0; i < cn.size; i++ {
		c := Coord{Row: 0, Col: i}
		if p == 1 {
			c = Coord{Row: i, Col: 0}
		}
		if b.cells[b.index(c)] == own && uf.find(cn.node(c)) == root {
			prev[c] = c
			queue = append(queue, c)
		}
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if cn.onEndBorder(c, p) {
			path := []Coord{c}
			for prev[c] != c {
				c = prev[c]
				path = append(path, c)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		for _, nb := range b.Neighbors(c) {
			if _, seen := prev[nb]; seen || b.cells[b.index(nb)] != own {
				continue
			}
			prev[nb] = c
			queue = append(queue, nb)
		}
	}
	return nil
}
