package engine

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ErrNoPath is returned when no rotation plan brings the player to the exit
var ErrNoPath = errors.New("no path to exit")

// Solution is a committed player route and the rotations that build it
type Solution struct {
	// Instructions in the order they must be played
	Instructions []Instruction `json:"instructions"`
	// Path maps every committed cell to the side the player enters it from
	Path map[Position]PathNode `json:"-"`
	// Route lists the committed cells in travel order
	Route []PathNode `json:"route"`
	// Explored counts visited search nodes
	Explored int `json:"explored"`
}

// Contains reports whether pos belongs to the player route
func (s *Solution) Contains(pos Position) bool {
	if s == nil {
		return false
	}
	_, ok := s.Path[pos]
	return ok
}

// Entry returns the side the player enters pos from
func (s *Solution) Entry(pos Position) (Direction, bool) {
	if s == nil {
		return noDirection, false
	}
	n, ok := s.Path[pos]
	return n.Entry, ok
}

// PathSolver searches for orientations of unlocked cells that route the
// player to the exit
type PathSolver struct {
	grid *Grid
}

// NewPathSolver creates a solver working on grid
func NewPathSolver(grid *Grid) *PathSolver {
	return &PathSolver{grid: grid}
}

// Solve runs a depth-first search from start. On success the grid is left
// in the solved orientation; on failure every cell is back where it was.
func (s *PathSolver) Solve(start PathNode) (*Solution, error) {
	run := &search{
		grid: s.grid,
		path: make(map[Position]PathNode),
	}
	if !run.visit(start) {
		log.WithFields(log.Fields{
			"start":    start.String(),
			"explored": run.explored,
		}).Debug("path search exhausted")
		return nil, fmt.Errorf("from %s: %w", start, ErrNoPath)
	}

	sol := &Solution{
		Instructions: run.instructions,
		Path:         run.path,
		Route:        run.route,
		Explored:     run.explored,
	}
	if sol.Instructions == nil {
		sol.Instructions = []Instruction{}
	}
	return sol, nil
}

type search struct {
	grid         *Grid
	path         map[Position]PathNode
	route        []PathNode
	instructions []Instruction
	explored     int
}

var (
	turnLeft  = []Action{RotateLeft}
	turnRight = []Action{RotateRight}
	turnHalf  = []Action{RotateLeft, RotateLeft}
)

func (r *search) visit(node PathNode) bool {
	r.explored++
	cell, ok := r.grid.Cell(node.Pos)
	if !ok {
		return false
	}
	if _, seen := r.path[node.Pos]; seen {
		return false
	}
	if cell.Kind() == Exit {
		return true
	}
	if cell.Dead() {
		return false
	}

	if cell.Locked() {
		return r.attempt(cell, node, nil)
	}

	if r.attempt(cell, node, nil) || r.attempt(cell, node, turnLeft) {
		return true
	}
	if !cell.MirrorInvariant() && r.attempt(cell, node, turnRight) {
		return true
	}
	if !cell.HalfTurnInvariant() && r.attempt(cell, node, turnHalf) {
		return true
	}
	return false
}

// attempt applies actions to cell, commits it to the route and descends
// through its exit. Any failure rolls back orientation, route and instructions.
func (r *search) attempt(cell *Connector, node PathNode, actions []Action) (found bool) {
	orientation := cell.Orientation()
	mark := len(r.instructions)
	index := len(r.route)

	defer func() {
		if found {
			return
		}
		cell.restore(orientation)
		r.instructions = r.instructions[:mark]
		if len(r.route) > index {
			r.route = r.route[:index]
			delete(r.path, node.Pos)
		}
	}()

	for _, a := range actions {
		if !cell.Rotate(a) {
			return false
		}
		r.instructions = append(r.instructions, Instruction{Pos: node.Pos, Action: a, Distance: index})
	}

	next, ok := r.grid.Advance(node.Pos, node.Entry)
	if !ok {
		return false
	}

	// every room the player passes is committed, a locked last room
	// before the exit included
	r.path[node.Pos] = node
	r.route = append(r.route, node)
	return r.visit(next)
}
