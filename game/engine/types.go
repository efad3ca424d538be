package engine

import (
	"fmt"
	"math"
)

// Direction is a side of a cell, used both as an entry side and an exit side
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// noDirection marks a missing route in a routing table
const noDirection Direction = -1

const (
	// Validation constants
	MinLevelSize = 1
	MaxLevelSize = 20

	// Infinite is the urgency of a hazard with no diversion opportunity
	Infinite = math.MaxInt

	WebSocketBufferSize = 256
)

var directionTokens = [...]string{"TOP", "RIGHT", "BOTTOM", "LEFT"}

// Directions lists every direction in clockwise order starting at Up
var Directions = [4]Direction{Up, Right, Down, Left}

// Opposite returns the facing side: Up<->Down, Left<->Right
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Valid reports whether d is one of the four sides
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionTokens[d]
}

// MarshalText encodes the direction as its protocol token
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(directionTokens[d]), nil
}

// UnmarshalText decodes a protocol token
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, ok := ParseDirection(string(text))
	if !ok {
		return fmt.Errorf("invalid direction %q", string(text))
	}
	*d = parsed
	return nil
}

// ParseDirection maps a protocol token (TOP, RIGHT, BOTTOM, LEFT) to a Direction.
// Unknown tokens are reported through ok rather than a default value.
func ParseDirection(token string) (Direction, bool) {
	for i, t := range directionTokens {
		if t == token {
			return Direction(i), true
		}
	}
	return noDirection, false
}

// Position represents x,y coordinates, x being the column and y the row
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Less orders positions by row, then by column
func (p Position) Less(o Position) bool {
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.X < o.X
}

// Step returns the adjacent position on side d
func (p Position) Step(d Direction) Position {
	switch d {
	case Up:
		return Position{X: p.X, Y: p.Y - 1}
	case Right:
		return Position{X: p.X + 1, Y: p.Y}
	case Down:
		return Position{X: p.X, Y: p.Y + 1}
	case Left:
		return Position{X: p.X - 1, Y: p.Y}
	}
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Action is a single quarter turn applied to a cell
type Action int

const (
	RotateLeft Action = iota
	RotateRight
)

func (a Action) String() string {
	if a == RotateRight {
		return "RIGHT"
	}
	return "LEFT"
}

// MarshalText encodes the action as its protocol token
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes LEFT or RIGHT
func (a *Action) UnmarshalText(text []byte) error {
	switch string(text) {
	case "LEFT":
		*a = RotateLeft
	case "RIGHT":
		*a = RotateRight
	default:
		return fmt.Errorf("invalid action %q", string(text))
	}
	return nil
}

// PathNode is a cell together with the side a mover enters it from
type PathNode struct {
	Pos   Position  `json:"pos" yaml:"pos"`
	Entry Direction `json:"entry" yaml:"entry"`
}

func (n PathNode) String() string {
	return fmt.Sprintf("%s from %s", n.Pos, n.Entry)
}

// Instruction is one rotation to emit. Distance is the urgency counter: the
// index of the cell on the player route for construction instructions, or
// the steps left before a hazard arrives for diversions.
type Instruction struct {
	Pos      Position `json:"pos"`
	Action   Action   `json:"action"`
	Distance int      `json:"distance"`
}

func (i Instruction) String() string {
	return fmt.Sprintf("%d %d %s", i.Pos.X, i.Pos.Y, i.Action)
}

// TurnInput is one turn's observation: the player's node and every moving hazard
type TurnInput struct {
	Player  PathNode   `json:"player"`
	Hazards []PathNode `json:"hazards,omitempty"`
}

// Decision is the action chosen for a turn
type Decision struct {
	Turn   int      `json:"turn"`
	Wait   bool     `json:"wait"`
	Pos    Position `json:"pos"`
	Action Action   `json:"action"`
	// Source is "path" for route construction, "hazard" for a diversion
	Source string `json:"source,omitempty"`
}

func (d Decision) String() string {
	if d.Wait {
		return "WAIT"
	}
	return fmt.Sprintf("%d %d %s", d.Pos.X, d.Pos.Y, d.Action)
}

// TurnRecord is a single entry of the turn history
type TurnRecord struct {
	Turn      int       `json:"turn"`
	Input     TurnInput `json:"input"`
	Decision  Decision  `json:"decision"`
	Timestamp int64     `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// HazardView is the JSON view of a tracked hazard
type HazardView struct {
	ID         int         `json:"id"`
	Node       PathNode    `json:"node"`
	Urgency    int         `json:"urgency"`
	Safe       bool        `json:"safe"`
	Diversions []Diversion `json:"diversions,omitempty"`
}

// GameState is a snapshot of an engine, suitable for JSON encoding
type GameState struct {
	LevelName    string        `json:"level_name"`
	Turn         int           `json:"turn"`
	Advancement  int           `json:"advancement"`
	Player       *PathNode     `json:"player,omitempty"`
	Solved       bool          `json:"solved"`
	NoPath       bool          `json:"no_path"`
	Grid         []string      `json:"grid"`
	Route        []PathNode    `json:"route,omitempty"`
	Pending      []Instruction `json:"pending,omitempty"`
	Hazards      []HazardView  `json:"hazards,omitempty"`
	Retired      int           `json:"retired_hazards"`
	LastDecision *Decision     `json:"last_decision,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
}
