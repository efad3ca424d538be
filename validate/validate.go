// Command validate checks every level file (.json, .yaml, .yml) in a
// directory, ../levels by default. It checks:
//   - JSON/YAML structure and required fields
//   - Dimensions, row lengths and the exit column
//   - Shape codes (0 to 13, negative when locked)
//   - The start node, when present, is inside the grid and the room is open from its entry side
//   - Solvability: a rotation plan routes the start node to the exit
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wricardo/crusade/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateLevel loads and validates a single level file
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	level, err := engine.DecodeLevelConfig(data, format)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidLevel) {
			result.fail("Invalid level: %v", err)
		} else {
			result.fail("Invalid %s: %v", strings.ToUpper(format), err)
		}
		return result
	}
	result.info("Structure: %q is %dx%d with the exit below column %d", level.Name, level.Width, level.Height, level.ExitX)

	validateCodes(level, &result)
	if !result.Valid {
		return result
	}

	if level.Start == nil {
		result.info("No start node, solvability not checked")
		return result
	}
	validateSolvable(level, &result)

	return result
}

// validateCodes reports unknown shape codes and counts the rotatable rooms
func validateCodes(level *engine.LevelConfig, result *ValidationResult) {
	rotatable, locked := 0, 0
	for y, row := range level.Rows {
		for x, token := range strings.Fields(row) {
			n, err := strconv.Atoi(token)
			if err != nil || n < -int(engine.Type13) || n > int(engine.Type13) {
				result.fail("Unknown shape code %q at (%d,%d)", token, x, y)
				continue
			}
			switch {
			case n < 0:
				locked++
			case n > 0:
				rotatable++
			}
		}
	}
	if result.Valid {
		result.info("Codes: %d rotatable rooms, %d locked rooms", rotatable, locked)
	}
}

// validateSolvable checks the start room and solves the level from it
func validateSolvable(level *engine.LevelConfig, result *ValidationResult) {
	start := *level.Start

	grid, err := engine.BuildGrid(level)
	if err != nil {
		result.fail("Invalid grid: %v", err)
		return
	}
	cell, _ := grid.Cell(start.Pos)
	if !cell.HasEntry(start.Entry) {
		result.fail("Start room %s is closed from %s", start.Pos, start.Entry)
		return
	}

	sol, _, err := engine.Preview(level, start)
	if err != nil {
		if errors.Is(err, engine.ErrNoPath) {
			result.fail("Unsolvable: no rotation plan reaches the exit from %s", start)
		} else {
			result.fail("Solver failed: %v", err)
		}
		return
	}
	result.info("Solvable: %d rooms, %d rotations", len(sol.Route), len(sol.Instructions))
}

// levelFiles lists the level files of dir in name order
func levelFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every level file and exits with non-zero status if any is
// invalid. The directory may be given as the first argument.
func main() {
	levelsDir := "../levels"
	if len(os.Args) > 1 {
		levelsDir = os.Args[1]
	}

	files, err := levelFiles(levelsDir)
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No level files found in %s\n", levelsDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
