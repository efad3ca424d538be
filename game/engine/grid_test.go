package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(width, height, exitX int, rows ...string) *LevelConfig {
	return &LevelConfig{
		Name:   "test",
		Width:  width,
		Height: height,
		Rows:   rows,
		ExitX:  exitX,
	}
}

func mustGrid(t *testing.T, l *LevelConfig) *Grid {
	t.Helper()
	g, err := BuildGrid(l)
	require.NoError(t, err)
	return g
}

func TestBuildGrid_AppendsExitRow(t *testing.T) {
	g := mustGrid(t, level(3, 2, 2, "1 -2 x", "0 3 13"))

	assert.Equal(t, 9, g.Len())
	assert.Equal(t, Position{X: 2, Y: 2}, g.Exit())

	exit, ok := g.Cell(Position{X: 2, Y: 2})
	require.True(t, ok)
	assert.Equal(t, Exit, exit.Kind())

	filler, ok := g.Cell(Position{X: 0, Y: 2})
	require.True(t, ok)
	assert.Equal(t, Type0, filler.Kind())

	locked, _ := g.Cell(Position{X: 1, Y: 0})
	assert.True(t, locked.Locked())
	assert.Equal(t, Type2, locked.Kind())

	junk, _ := g.Cell(Position{X: 2, Y: 0})
	assert.Equal(t, Type0, junk.Kind(), "unknown codes have no connection")

	assert.Equal(t, []string{"1 -2 0", "0 3 13", "0 0 X"}, g.Render())
}

func TestGrid_NeighborIsSymmetric(t *testing.T) {
	g := mustGrid(t, level(3, 3, 1, "1 1 1", "1 1 1", "1 1 1"))

	for _, p := range g.Positions() {
		for _, d := range Directions {
			n, ok := g.Neighbor(p, d)
			if !ok {
				continue
			}
			back, ok := g.Neighbor(n, d.Opposite())
			require.True(t, ok, "%s %s", p, d)
			assert.Equal(t, p, back)
		}
	}

	_, ok := g.Neighbor(Position{X: 0, Y: 0}, Left)
	assert.False(t, ok)
	_, ok = g.Neighbor(Position{X: 0, Y: 0}, Up)
	assert.False(t, ok)
	_, ok = g.Neighbor(Position{X: 9, Y: 9}, Up)
	assert.False(t, ok, "unregistered positions have no neighbors")
}

func TestGrid_Advance(t *testing.T) {
	g := mustGrid(t, level(3, 2, 1, "0 3 2", "0 3 0"))

	next, ok := g.Advance(Position{X: 1, Y: 0}, Up)
	require.True(t, ok)
	assert.Equal(t, PathNode{Pos: Position{X: 1, Y: 1}, Entry: Up}, next)

	_, ok = g.Advance(Position{X: 1, Y: 0}, Left)
	assert.False(t, ok, "closed side")

	_, ok = g.Advance(Position{X: 2, Y: 0}, Left)
	assert.False(t, ok, "exits through the right boundary")

	next, ok = g.Advance(Position{X: 1, Y: 1}, Up)
	require.True(t, ok)
	assert.Equal(t, Position{X: 1, Y: 2}, next.Pos)

	_, ok = g.Advance(next.Pos, next.Entry)
	assert.False(t, ok, "nothing below the exit")
}

func TestGrid_Positions(t *testing.T) {
	g := mustGrid(t, level(2, 1, 0, "1 1"))
	assert.Equal(t, []Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, g.Positions())
}
