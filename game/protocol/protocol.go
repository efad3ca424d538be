// Package protocol reads and writes the line based turn protocol: a level
// header followed by one observation block per turn, answered by one
// decision line per turn.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/crusade/game/engine"
)

var (
	// ErrMalformed wraps every protocol parsing failure
	ErrMalformed = errors.New("malformed input")
	// ErrUnknownSide is returned by ReadTurn when the player side cannot be
	// decoded and no earlier turn gave one. The turn is fully consumed.
	ErrUnknownSide = errors.New("unknown player side")
)

// Reader decodes the level header and per turn observations
type Reader struct {
	scanner *bufio.Scanner
	line    int
	// last player side decoded, reused when a turn carries a bad token
	lastEntry engine.Direction
	hasEntry  bool
}

// NewReader creates a protocol reader over r
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	return &Reader{scanner: scanner}
}

func (r *Reader) next() ([]string, error) {
	for r.scanner.Scan() {
		r.line++
		fields := strings.Fields(r.scanner.Text())
		if len(fields) == 0 {
			continue
		}
		return fields, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *Reader) ints(want int) ([]int, error) {
	fields, err := r.next()
	if err != nil {
		return nil, err
	}
	if len(fields) < want {
		return nil, fmt.Errorf("%w: line %d: expected %d values, got %d", ErrMalformed, r.line, want, len(fields))
	}
	out := make([]int, want)
	for i := 0; i < want; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q is not a number", ErrMalformed, r.line, fields[i])
		}
		out[i] = n
	}
	return out, nil
}

func (r *Reader) node() (engine.PathNode, bool, error) {
	fields, err := r.next()
	if err != nil {
		return engine.PathNode{}, false, err
	}
	if len(fields) < 3 {
		return engine.PathNode{}, false, fmt.Errorf("%w: line %d: expected X Y SIDE", ErrMalformed, r.line)
	}
	x, errX := strconv.Atoi(fields[0])
	y, errY := strconv.Atoi(fields[1])
	if errX != nil || errY != nil {
		return engine.PathNode{}, false, fmt.Errorf("%w: line %d: bad coordinates", ErrMalformed, r.line)
	}
	entry, ok := engine.ParseDirection(fields[2])
	return engine.PathNode{Pos: engine.Position{X: x, Y: y}, Entry: entry}, ok, nil
}

// ReadLevel reads "W H", H rows of W shape codes and the exit column
func (r *Reader) ReadLevel(name string) (*engine.LevelConfig, error) {
	size, err := r.ints(2)
	if err != nil {
		return nil, fmt.Errorf("reading level size: %w", err)
	}
	level := &engine.LevelConfig{
		Name:   name,
		Width:  size[0],
		Height: size[1],
	}
	for _, n := range size {
		if n < engine.MinLevelSize || n > engine.MaxLevelSize {
			return nil, fmt.Errorf("%w: line %d: size must be between %d and %d, got %dx%d",
				engine.ErrInvalidLevel, r.line, engine.MinLevelSize, engine.MaxLevelSize, level.Width, level.Height)
		}
	}
	for y := 0; y < level.Height; y++ {
		fields, err := r.next()
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", y, err)
		}
		level.Rows = append(level.Rows, strings.Join(fields, " "))
	}
	exit, err := r.ints(1)
	if err != nil {
		return nil, fmt.Errorf("reading exit column: %w", err)
	}
	level.ExitX = exit[0]

	if err := engine.ValidateLevelConfig(level); err != nil {
		return nil, err
	}
	return level, nil
}

// ReadTurn reads the player node, the hazard count and one line per hazard.
// Hazards with an unknown side token are dropped. A player line with an
// unknown side keeps its position and takes the side of the last decoded
// player line; before any such line it yields ErrUnknownSide.
func (r *Reader) ReadTurn() (engine.TurnInput, error) {
	var in engine.TurnInput
	player, known, err := r.node()
	if err != nil {
		return in, err
	}
	playerLine := r.line
	switch {
	case known:
		r.lastEntry, r.hasEntry = player.Entry, true
	case r.hasEntry:
		log.WithFields(log.Fields{
			"line": playerLine,
			"side": r.lastEntry.String(),
		}).Warn("unknown player side, reusing last known side")
		player.Entry = r.lastEntry
	default:
		log.WithField("line", playerLine).Warn("unknown player side and no earlier side to reuse")
	}
	in.Player = player

	count, err := r.ints(1)
	if err != nil {
		return in, fmt.Errorf("reading hazard count: %w", err)
	}
	for i := 0; i < count[0]; i++ {
		h, ok, err := r.node()
		if err != nil {
			return in, fmt.Errorf("reading hazard %d: %w", i, err)
		}
		if !ok {
			log.WithField("line", r.line).Warn("dropping hazard with unknown side")
			continue
		}
		in.Hazards = append(in.Hazards, h)
	}
	if !known && !r.hasEntry {
		return in, fmt.Errorf("line %d: %w", playerLine, ErrUnknownSide)
	}
	return in, nil
}

// WriteDecision writes one decision line
func WriteDecision(w io.Writer, d engine.Decision) error {
	_, err := fmt.Fprintln(w, d.String())
	return err
}
