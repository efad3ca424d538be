package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidLevel wraps every level validation failure
var ErrInvalidLevel = errors.New("level validation")

// LevelConfig describes a maze: Height rows of Width shape codes and the
// column of the exit below the last row. Codes 1-13 are rotatable shapes,
// negative codes are locked, anything else has no connection.
type LevelConfig struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Width       int       `json:"width" yaml:"width"`
	Height      int       `json:"height" yaml:"height"`
	Rows        []string  `json:"rows" yaml:"rows"`
	ExitX       int       `json:"exit_x" yaml:"exit_x"`
	Start       *PathNode `json:"start,omitempty" yaml:"start,omitempty"`
}

// ParseShapeCode decodes a single cell token. Unparsable or out of range
// tokens become the no-connection shape.
func ParseShapeCode(token string) (Kind, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return Type0, false
	}
	locked := false
	if n < 0 {
		locked = true
		n = -n
	}
	if n < int(Type1) || n > int(Type13) {
		return Type0, false
	}
	return Kind(n), locked
}

// ValidateLevelConfig checks the level dimensions and exit column
func ValidateLevelConfig(level *LevelConfig) error {
	if level == nil {
		return fmt.Errorf("%w: level is nil", ErrInvalidLevel)
	}
	if level.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLevel)
	}
	if level.Width < MinLevelSize || level.Width > MaxLevelSize {
		return fmt.Errorf("%w: width must be between %d and %d, got %d", ErrInvalidLevel, MinLevelSize, MaxLevelSize, level.Width)
	}
	if level.Height < MinLevelSize || level.Height > MaxLevelSize {
		return fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalidLevel, MinLevelSize, MaxLevelSize, level.Height)
	}
	if len(level.Rows) != level.Height {
		return fmt.Errorf("%w: rows must have %d entries to match height, got %d", ErrInvalidLevel, level.Height, len(level.Rows))
	}
	for i, row := range level.Rows {
		if n := len(strings.Fields(row)); n != level.Width {
			return fmt.Errorf("%w: row %d must have %d codes to match width, got %d", ErrInvalidLevel, i+1, level.Width, n)
		}
	}
	if level.ExitX < 0 || level.ExitX >= level.Width {
		return fmt.Errorf("%w: exit_x must be between 0 and %d, got %d", ErrInvalidLevel, level.Width-1, level.ExitX)
	}
	if s := level.Start; s != nil {
		if s.Pos.X < 0 || s.Pos.X >= level.Width || s.Pos.Y < 0 || s.Pos.Y >= level.Height {
			return fmt.Errorf("%w: start %s is outside the grid", ErrInvalidLevel, s.Pos)
		}
		if !s.Entry.Valid() {
			return fmt.Errorf("%w: start entry is invalid", ErrInvalidLevel)
		}
	}
	return nil
}

// BuildGrid creates the grid of a level with the exit row appended at y == Height
func BuildGrid(level *LevelConfig) (*Grid, error) {
	if err := ValidateLevelConfig(level); err != nil {
		return nil, err
	}

	grid := NewGrid(level.Width, level.Height)
	for y, row := range level.Rows {
		for x, token := range strings.Fields(row) {
			kind, locked := ParseShapeCode(token)
			grid.AddCell(Position{X: x, Y: y}, kind, locked)
		}
	}
	for x := 0; x < level.Width; x++ {
		if x == level.ExitX {
			grid.AddCell(Position{X: x, Y: level.Height}, Exit, true)
			continue
		}
		grid.AddCell(Position{X: x, Y: level.Height}, Type0, true)
	}
	return grid, nil
}

// DecodeLevelConfig parses level data. format is "json" or "yaml".
func DecodeLevelConfig(data []byte, format string) (*LevelConfig, error) {
	var level LevelConfig
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &level); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &level); err != nil {
			return nil, err
		}
	}
	if err := ValidateLevelConfig(&level); err != nil {
		return nil, err
	}
	return &level, nil
}

// LoadLevelConfig loads a level from a .json, .yaml or .yml file
func LoadLevelConfig(filename string) (*LevelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	level, err := DecodeLevelConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return level, nil
}

// DefaultLevel returns a straight corridor, used when no level directory is available
func DefaultLevel() *LevelConfig {
	return &LevelConfig{
		Name:        "Corridor",
		Description: "A single column of straight pieces leading to the exit",
		Width:       3,
		Height:      3,
		Rows: []string{
			"0 3 0",
			"0 3 0",
			"0 3 0",
		},
		ExitX: 1,
		Start: &PathNode{Pos: Position{X: 1, Y: 0}, Entry: Up},
	}
}
