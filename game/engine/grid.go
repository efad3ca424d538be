package engine

import (
	"sort"
	"strings"
)

// Grid holds every cell of a level keyed by position. Neighbors are derived
// from position arithmetic and membership, so adjacency is always symmetric.
type Grid struct {
	width  int
	height int
	exit   Position
	cells  map[Position]*Connector
}

// NewGrid creates an empty grid. height counts the playable rows only; the
// exit row lives at y == height.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make(map[Position]*Connector),
	}
}

// AddCell inserts or replaces the cell at pos
func (g *Grid) AddCell(pos Position, kind Kind, locked bool) *Connector {
	c := NewConnector(pos, kind, locked)
	g.cells[pos] = c
	if kind == Exit {
		g.exit = pos
	}
	return c
}

// Cell returns the connector at pos
func (g *Grid) Cell(pos Position) (*Connector, bool) {
	c, ok := g.cells[pos]
	return c, ok
}

// Neighbor returns the adjacent position on side d when both cells exist
func (g *Grid) Neighbor(pos Position, d Direction) (Position, bool) {
	if _, ok := g.cells[pos]; !ok || !d.Valid() {
		return Position{}, false
	}
	next := pos.Step(d)
	if _, ok := g.cells[next]; !ok {
		return Position{}, false
	}
	return next, true
}

// Advance follows the current routing of the cell at pos for a mover entering
// from entry. It returns the next cell and the side it is entered from, or
// false at a dead end or the grid boundary.
func (g *Grid) Advance(pos Position, entry Direction) (PathNode, bool) {
	c, ok := g.cells[pos]
	if !ok {
		return PathNode{}, false
	}
	out, ok := c.Follow(entry)
	if !ok {
		return PathNode{}, false
	}
	next, ok := g.Neighbor(pos, out)
	if !ok {
		return PathNode{}, false
	}
	return PathNode{Pos: next, Entry: out.Opposite()}, true
}

// Positions returns every registered position in row-major order
func (g *Grid) Positions() []Position {
	out := make([]Position, 0, len(g.cells))
	for p := range g.cells {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Len returns the number of cells, exit row included
func (g *Grid) Len() int { return len(g.cells) }

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Exit returns the position of the exit cell
func (g *Grid) Exit() Position { return g.exit }

// Render returns one line per row with the current cell codes
func (g *Grid) Render() []string {
	rows := make([]string, 0, g.height+1)
	for y := 0; y <= g.height; y++ {
		codes := make([]string, 0, g.width)
		for x := 0; x < g.width; x++ {
			c, ok := g.cells[Position{X: x, Y: y}]
			if !ok {
				codes = append(codes, ".")
				continue
			}
			codes = append(codes, c.Code())
		}
		rows = append(rows, strings.Join(codes, " "))
	}
	return rows
}

// orientations captures the orientation of every cell
func (g *Grid) orientations() map[Position]int {
	out := make(map[Position]int, len(g.cells))
	for p, c := range g.cells {
		out[p] = c.orientation
	}
	return out
}
