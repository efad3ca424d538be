package service

import (
	"time"

	"github.com/wricardo/crusade/game/engine"
)

// SessionInfo provides information about a solver session
type SessionInfo struct {
	ID             string              `json:"id"`
	LevelID        string              `json:"level_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level"`
}

// TurnResult contains the decision of one turn
type TurnResult struct {
	Decision  engine.Decision   `json:"decision"`
	Command   string            `json:"command"` // "X Y LEFT|RIGHT" or "WAIT"
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
	// Warning is set when the turn could not be planned, e.g. no route exists
	Warning string `json:"warning,omitempty"`
}

// GameEvent represents something that happened while playing a turn
type GameEvent struct {
	Type      string          `json:"type"` // "reset", "solved", "no_path", "rotate", "divert", "hazard"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// SolveResult is a stateless route preview
type SolveResult struct {
	LevelID      string               `json:"level_id"`
	Start        engine.PathNode      `json:"start"`
	Solved       bool                 `json:"solved"`
	Instructions []engine.Instruction `json:"instructions"`
	Route        []engine.PathNode    `json:"route"`
	Explored     int                  `json:"explored"`
	Grid         []string             `json:"grid"`
	Message      string               `json:"message,omitempty"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []engine.TurnRecord `json:"turns"`
	TotalTurns  int                 `json:"total_turns"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// LevelInfo provides information about a level file
type LevelInfo struct {
	Filename    string `json:"filename"`
	LevelID     string `json:"level_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ExitX       int    `json:"exit_x"`
	HasStart    bool   `json:"has_start"`
}
