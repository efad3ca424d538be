package service

import (
	"context"
	"time"

	"github.com/wricardo/crusade/game/engine"
)

// GameService defines all solver session operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turn Operations
	PlayTurn(ctx context.Context, sessionID string, input engine.TurnInput, reset bool) (*TurnResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels
	Solve(ctx context.Context, levelID string, start *engine.PathNode) (*SolveResult, error)
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error)
	SaveLevel(ctx context.Context, levelID string, level *engine.LevelConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, levelID string, level *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, levelID string, level *engine.LevelConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles level loading
type LevelManager interface {
	LoadLevel(levelID string) (*engine.LevelConfig, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *engine.LevelConfig
	SaveLevel(levelID string, level *engine.LevelConfig) error
}

// Session represents an active solver session
type Session struct {
	ID             string
	LevelID        string
	Engine         *engine.GameEngine
	Level          *engine.LevelConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
