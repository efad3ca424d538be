package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/crusade/game/engine"
)

var (
	// ErrLevelNotFound is returned by level managers for unknown level ids
	ErrLevelNotFound = errors.New("level not found")
	// ErrSessionNotFound is returned by session managers for unknown session ids
	ErrSessionNotFound = errors.New("session not found")
	// ErrStartRequired is returned by Solve when neither the request nor the level gives a start node
	ErrStartRequired = errors.New("start node required")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// loadLevel resolves a level id, listing the available ids when it is unknown
func (s *gameServiceImpl) loadLevel(levelID string) (*engine.LevelConfig, string, error) {
	if levelID == "" {
		return s.levels.GetDefault(), "default", nil
	}

	level, err := s.levels.LoadLevel(levelID)
	if err == nil {
		return level, levelID, nil
	}
	if !errors.Is(err, ErrLevelNotFound) {
		return nil, "", fmt.Errorf("failed to load level %s: %w", levelID, err)
	}

	available, listErr := s.levels.ListLevels()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, l := range available {
			ids = append(ids, l.LevelID)
		}
		return nil, "", fmt.Errorf("level '%s' not found, available levels: %v: %w", levelID, ids, ErrLevelNotFound)
	}
	return nil, "", fmt.Errorf("level '%s' not found, use /api/levels to list available levels: %w", levelID, ErrLevelNotFound)
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		Level:          sess.Level,
	}
}

// CreateSession creates a new solver session
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	level, id, err := s.loadLevel(levelID)
	if err != nil {
		return nil, err
	}

	// the session manager generates the id
	sess, err := s.sessions.Create("", id, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session '%s': %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// PlayTurn feeds one observation to the session engine and returns its decision
func (s *gameServiceImpl) PlayTurn(ctx context.Context, sessionID string, input engine.TurnInput, reset bool) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session '%s': %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Session reset to the level's initial grid",
			Timestamp: time.Now(),
		})
	}

	wasSolved := sess.Engine.Solution() != nil
	warningsBefore := 0
	if p := sess.Engine.Planner(); p != nil {
		warningsBefore = len(p.Warnings())
	}

	decision, turnErr := sess.Engine.Turn(input)
	if turnErr != nil && !errors.Is(turnErr, engine.ErrNoPath) {
		return nil, turnErr
	}

	result := &TurnResult{
		Decision: decision,
		Command:  decision.String(),
		Events:   append(events, s.turnEvents(sess, decision, wasSolved, warningsBefore, turnErr)...),
	}
	if turnErr != nil {
		result.Warning = turnErr.Error()
	}
	result.GameState = sess.Engine.GetState()

	if err := s.sessions.Save(sessionID); err != nil {
		log.WithError(err).WithField("session", sessionID).Warn("failed to persist session after turn")
	}
	return result, nil
}

func (s *gameServiceImpl) turnEvents(sess *Session, d engine.Decision, wasSolved bool, warningsBefore int, turnErr error) []GameEvent {
	now := time.Now()
	var events []GameEvent

	if turnErr != nil && d.Turn == 1 {
		events = append(events, GameEvent{Type: "no_path", Message: turnErr.Error(), Timestamp: now})
	}
	if sol := sess.Engine.Solution(); !wasSolved && sol != nil {
		events = append(events, GameEvent{
			Type:      "solved",
			Message:   fmt.Sprintf("Route of %d cells needs %d rotations", len(sol.Route), len(sol.Instructions)),
			Timestamp: now,
		})
	}
	if p := sess.Engine.Planner(); p != nil {
		warnings := p.Warnings()
		for _, w := range warnings[warningsBefore:] {
			events = append(events, GameEvent{Type: "hazard", Message: w, Timestamp: now})
		}
	}
	switch {
	case d.Wait:
	case d.Source == "hazard":
		events = append(events, GameEvent{Type: "divert", Message: "Diverting a hazard: " + d.String(), Timestamp: now, Position: d.Pos})
	default:
		events = append(events, GameEvent{Type: "rotate", Message: "Building the route: " + d.String(), Timestamp: now, Position: d.Pos})
	}
	return events
}

// Reset resets a session to its initial grid
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session '%s': %w", sessionID, err)
	}

	state := sess.Engine.Reset()
	if err := s.sessions.Save(sessionID); err != nil {
		log.WithError(err).WithField("session", sessionID).Warn("failed to persist session after reset")
	}
	return state, nil
}

// GetGameState returns the current engine state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session '%s': %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sess.Engine.GetState(), nil
}

// GetTurnHistory returns a page of the turn history
func (s *gameServiceImpl) GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session '%s': %w", sessionID, err)
	}

	history := sess.Engine.GetTurnHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	turns := []engine.TurnRecord{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				turns = append(turns, history[i])
			}
		} else {
			turns = append(turns, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Solve previews the route of a level without creating a session. start
// overrides the level's own start node.
func (s *gameServiceImpl) Solve(ctx context.Context, levelID string, start *engine.PathNode) (*SolveResult, error) {
	s.mu.RLock()
	level, id, err := s.loadLevel(levelID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if start == nil {
		start = level.Start
	}
	if start == nil {
		return nil, fmt.Errorf("level '%s' has no start: %w", id, ErrStartRequired)
	}

	sol, grid, err := engine.Preview(level, *start)
	result := &SolveResult{
		LevelID:      id,
		Start:        *start,
		Grid:         grid,
		Instructions: []engine.Instruction{},
		Route:        []engine.PathNode{},
	}
	if err != nil {
		if errors.Is(err, engine.ErrNoPath) {
			result.Message = err.Error()
			return result, nil
		}
		return nil, err
	}

	result.Solved = true
	result.Instructions = sol.Instructions
	result.Route = sol.Route
	result.Explored = sol.Explored
	result.Message = fmt.Sprintf("Route of %d cells needs %d rotations", len(sol.Route), len(sol.Instructions))
	return result, nil
}

// ListLevels returns all available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// LoadLevel loads a specific level
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error) {
	return s.levels.LoadLevel(levelID)
}

// SaveLevel validates and stores a level
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID string, level *engine.LevelConfig) error {
	return s.levels.SaveLevel(levelID, level)
}
