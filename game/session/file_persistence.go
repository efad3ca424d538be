package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/crusade/game/engine"
	"github.com/wricardo/crusade/game/service"
)

// FilePersistence implements SessionPersistence using file system storage
type FilePersistence struct {
	sessionsDir string
	levels      service.LevelManager
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string, levels service.LevelManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir: sessionsDir,
		levels:      levels,
	}, nil
}

// Save persists a session to a JSON file
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	filePath, err := fp.getFilePath(session.ID)
	if err != nil {
		return err
	}

	data := PersistedSessionData{
		ID:             session.ID,
		LevelID:        session.LevelID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Turns:          session.Engine.Inputs(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	// write then rename so a crash never leaves a truncated session
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load rebuilds a session from its JSON file by replaying the recorded turns
// against a fresh engine for the stored level.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath, err := fp.getFilePath(id)
	if err != nil {
		return nil, err
	}

	jsonData, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	level, err := fp.loadLevel(data.LevelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level '%s': %w", data.LevelID, err)
	}

	gameEngine, err := engine.NewEngine(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	gameEngine.Replay(data.Turns)

	log.WithFields(log.Fields{"session": data.ID, "turns": len(data.Turns)}).Debug("session restored")

	return &service.Session{
		ID:             data.ID,
		LevelID:        data.LevelID,
		Engine:         gameEngine,
		Level:          level,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

func (fp *FilePersistence) loadLevel(levelID string) (*engine.LevelConfig, error) {
	if levelID == "" || levelID == "default" {
		return fp.levels.GetDefault(), nil
	}
	return fp.levels.LoadLevel(levelID)
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}
	filePath, err := fp.getFilePath(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	filePath, err := fp.getFilePath(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(filePath)
	return err == nil
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return filepath.Join(fp.sessionsDir, id+".json"), nil
}
