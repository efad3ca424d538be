// Command analyze prints a styled report for every level file in the
// project's levels directory. It summarizes dimensions, counts of rotatable
// and locked rooms, solves each level from its start node and highlights
// rotations whose deadline leaves no slack.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/crusade/game/engine"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")).Width(12)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	routeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#101F38")).Background(lipgloss.Color("#8BC34A"))
	cellStyle  = lipgloss.NewStyle().Width(4).Align(lipgloss.Right)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2a3850")).Padding(0, 1)
)

// LevelReport is the analysis of one level file
type LevelReport struct {
	File      string
	Level     *engine.LevelConfig
	Rotatable int
	Locked    int
	Solution  *engine.Solution
	Grid      []string
	// Slack is the smallest number of spare turns before a rotation is due
	Slack int
	Err   error
}

func main() {
	levelsDir := "levels"
	if len(os.Args) > 1 {
		levelsDir = os.Args[1]
	}

	files, err := levelFiles(levelsDir)
	if err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Error finding level files: %v", err)))
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Println(renderReport(analyzeLevel(file)))
	}
}

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

func analyzeLevel(path string) LevelReport {
	report := LevelReport{File: filepath.Base(path)}

	level, err := engine.LoadLevelConfig(path)
	if err != nil {
		report.Err = err
		return report
	}
	report.Level = level

	for _, row := range level.Rows {
		for _, token := range strings.Fields(row) {
			kind, locked := engine.ParseShapeCode(token)
			switch {
			case kind == engine.Type0:
			case locked:
				report.Locked++
			default:
				report.Rotatable++
			}
		}
	}

	if level.Start == nil {
		return report
	}

	sol, grid, err := engine.Preview(level, *level.Start)
	report.Grid = grid
	if err != nil {
		report.Err = err
		return report
	}
	report.Solution = sol
	report.Slack = slack(sol.Instructions)
	return report
}

// slack returns the fewest spare turns of any instruction when one
// instruction is played per turn in plan order
func slack(instructions []engine.Instruction) int {
	if len(instructions) == 0 {
		return 0
	}
	least := instructions[0].Distance - 1
	for i, in := range instructions {
		if s := in.Distance - (i + 1); s < least {
			least = s
		}
	}
	return least
}

func renderReport(r LevelReport) string {
	var lines []string

	if r.Level == nil {
		lines = append(lines,
			titleStyle.Render(r.File),
			errorStyle.Render(fmt.Sprintf("Error: %v", r.Err)))
		return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	lines = append(lines,
		titleStyle.Render(fmt.Sprintf("%s (%s)", r.Level.Name, r.File)),
		field("Size", fmt.Sprintf("%d x %d, exit below column %d", r.Level.Width, r.Level.Height, r.Level.ExitX)),
		field("Rooms", fmt.Sprintf("%d rotatable, %d locked", r.Rotatable, r.Locked)),
	)

	switch {
	case r.Level.Start == nil:
		lines = append(lines, warnStyle.Render("No start node, solvability not checked"))
	case r.Err != nil:
		lines = append(lines, field("Start", r.Level.Start.String()),
			errorStyle.Render(fmt.Sprintf("Unsolvable: %v", r.Err)))
	default:
		sol := r.Solution
		lines = append(lines,
			field("Start", r.Level.Start.String()),
			field("Route", fmt.Sprintf("%d rooms, %d explored", len(sol.Route), sol.Explored)),
			field("Rotations", fmt.Sprintf("%d", len(sol.Instructions))),
		)
		if r.Slack < 0 {
			lines = append(lines, warnStyle.Render(fmt.Sprintf("⚠️  Plan is %d turns late, rotations must be reordered", -r.Slack)))
		} else if len(sol.Instructions) > 0 && r.Slack == 0 {
			lines = append(lines, warnStyle.Render("⚠️  No spare turns, every rotation is due immediately"))
		} else {
			lines = append(lines, field("Slack", fmt.Sprintf("%d turns", r.Slack)))
		}
		lines = append(lines, "", renderGrid(r.Grid, sol))
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label+":"), value)
}

// renderGrid draws the solved grid with route rooms highlighted
func renderGrid(rows []string, sol *engine.Solution) string {
	out := make([]string, 0, len(rows))
	for y, row := range rows {
		cells := []string{}
		for x, code := range strings.Fields(row) {
			cell := cellStyle.Render(code)
			if sol.Contains(engine.Position{X: x, Y: y}) {
				cell = routeStyle.Render(cell)
			}
			cells = append(cells, cell)
		}
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}
