package engine

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Engine provides the main interface for turn-based play
type Engine interface {
	// Turn handling
	Turn(in TurnInput) (Decision, error)
	Replay(turns []TurnInput) []Decision
	Reset() *GameState

	// State
	GetState() *GameState
	GetLevel() *LevelConfig
	Solution() *Solution

	// History
	GetTurnHistory() []TurnRecord
	GetLastTurn() *TurnRecord
}

// GameEngine implements the Engine interface. It keeps a planned model of
// the maze: after the first turn the grid holds the solved orientations and
// every diversion played since.
type GameEngine struct {
	level    *LevelConfig
	grid     *Grid
	solution *Solution
	planner  *HazardPlanner
	solveErr error

	// index of the next construction instruction
	next        int
	advancement int
	player      *PathNode
	history     []TurnRecord
}

// NewEngine creates an engine for a level
func NewEngine(level *LevelConfig) (*GameEngine, error) {
	grid, err := BuildGrid(level)
	if err != nil {
		return nil, err
	}
	return &GameEngine{level: level, grid: grid}, nil
}

// Turn consumes one observation and decides the action for the turn. When
// the level has no route every turn waits and returns ErrNoPath.
func (e *GameEngine) Turn(in TurnInput) (Decision, error) {
	d := Decision{Turn: len(e.history) + 1, Wait: true}
	err := e.play(in, &d)

	rec := TurnRecord{
		Turn:      d.Turn,
		Input:     in,
		Decision:  d,
		Timestamp: time.Now().Unix(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	e.history = append(e.history, rec)
	return d, err
}

func (e *GameEngine) play(in TurnInput, d *Decision) error {
	e.occupy(in.Player)
	e.advancement++

	if e.solution == nil && e.solveErr == nil {
		e.solve(in.Player)
	}
	if e.solveErr != nil {
		return e.solveErr
	}

	e.planner.Tick()
	for _, h := range in.Hazards {
		if e.solution.Contains(h.Pos) {
			continue
		}
		e.planner.Observe(h.Pos, h.Entry)
	}

	instr, building := e.nextInstruction()
	if !building || instr.Distance > e.advancement {
		if div, ok := e.planner.InterceptOne(); ok {
			d.Wait = false
			d.Pos = div.Pos
			d.Action = div.Action
			d.Source = "hazard"
			return nil
		}
	}
	if building {
		e.next++
		d.Wait = false
		d.Pos = instr.Pos
		d.Action = instr.Action
		d.Source = "path"
	}
	return nil
}

func (e *GameEngine) solve(start PathNode) {
	sol, err := NewPathSolver(e.grid).Solve(start)
	if err != nil {
		e.solveErr = err
		log.WithFields(log.Fields{
			"level": e.level.Name,
			"start": start.String(),
		}).WithError(err).Error("level has no route to the exit")
		return
	}
	e.solution = sol
	e.planner = NewHazardPlanner(e.grid, sol)
	log.WithFields(log.Fields{
		"level":        e.level.Name,
		"route":        len(sol.Route),
		"instructions": len(sol.Instructions),
		"explored":     sol.Explored,
	}).Debug("route solved")
}

// nextInstruction skips construction steps on cells locked since the
// route was solved; those cells were already placed by a diversion.
func (e *GameEngine) nextInstruction() (Instruction, bool) {
	for e.next < len(e.solution.Instructions) {
		instr := e.solution.Instructions[e.next]
		if c, ok := e.grid.Cell(instr.Pos); ok && c.Locked() {
			e.next++
			continue
		}
		return instr, true
	}
	return Instruction{}, false
}

func (e *GameEngine) occupy(node PathNode) {
	if e.player != nil {
		if c, ok := e.grid.Cell(e.player.Pos); ok {
			c.SetOccupied(false)
		}
	}
	if c, ok := e.grid.Cell(node.Pos); ok {
		c.SetOccupied(true)
	}
	e.player = &node
}

// Replay plays a sequence of turns and returns the decisions. ErrNoPath is
// expected on unsolvable levels and is not reported.
func (e *GameEngine) Replay(turns []TurnInput) []Decision {
	out := make([]Decision, 0, len(turns))
	for _, in := range turns {
		d, err := e.Turn(in)
		if err != nil && !errors.Is(err, ErrNoPath) {
			log.WithError(err).WithField("turn", d.Turn).Warn("replay turn failed")
		}
		out = append(out, d)
	}
	return out
}

// Reset rebuilds the grid from the level and clears all turns
func (e *GameEngine) Reset() *GameState {
	grid, err := BuildGrid(e.level)
	if err != nil {
		// the level was validated by NewEngine
		log.WithError(err).Error("rebuilding grid")
		return e.GetState()
	}
	*e = GameEngine{level: e.level, grid: grid}
	return e.GetState()
}

// GetLevel returns the level being played
func (e *GameEngine) GetLevel() *LevelConfig {
	return e.level
}

// Solution returns the committed route, nil before the first turn or when
// the level has no route
func (e *GameEngine) Solution() *Solution {
	return e.solution
}

// Planner returns the hazard planner, nil until a route is solved
func (e *GameEngine) Planner() *HazardPlanner {
	return e.planner
}

// Grid returns the planned grid model
func (e *GameEngine) Grid() *Grid {
	return e.grid
}

// GetTurnHistory returns every turn played since the last reset
func (e *GameEngine) GetTurnHistory() []TurnRecord {
	return e.history
}

// GetLastTurn returns the last turn played, or nil if none
func (e *GameEngine) GetLastTurn() *TurnRecord {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// Inputs returns the observations played since the last reset
func (e *GameEngine) Inputs() []TurnInput {
	out := make([]TurnInput, 0, len(e.history))
	for _, rec := range e.history {
		out = append(out, rec.Input)
	}
	return out
}

// GetState returns a snapshot of the engine
func (e *GameEngine) GetState() *GameState {
	state := &GameState{
		LevelName:   e.level.Name,
		Turn:        len(e.history),
		Advancement: e.advancement,
		Solved:      e.solution != nil,
		NoPath:      errors.Is(e.solveErr, ErrNoPath),
		Grid:        e.grid.Render(),
	}
	if e.player != nil {
		p := *e.player
		state.Player = &p
	}
	if e.solution != nil {
		state.Route = append([]PathNode(nil), e.solution.Route...)
		if e.next < len(e.solution.Instructions) {
			state.Pending = append([]Instruction(nil), e.solution.Instructions[e.next:]...)
		}
	}
	if e.planner != nil {
		state.Hazards = e.planner.Hazards()
		state.Retired = e.planner.Retired()
		state.Warnings = e.planner.Warnings()
	}
	if e.solveErr != nil {
		state.Warnings = append(state.Warnings, e.solveErr.Error())
	}
	if last := e.GetLastTurn(); last != nil {
		d := last.Decision
		state.LastDecision = &d
	}
	return state
}

// Preview solves a level from start on a fresh grid without playing any turn.
// It returns the solution and the solved grid rendering.
func Preview(level *LevelConfig, start PathNode) (*Solution, []string, error) {
	grid, err := BuildGrid(level)
	if err != nil {
		return nil, nil, err
	}
	sol, err := NewPathSolver(grid).Solve(start)
	if err != nil {
		return nil, grid.Render(), err
	}
	return sol, grid.Render(), nil
}
