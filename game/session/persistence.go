package session

import (
	"time"

	"github.com/wricardo/crusade/game/engine"
	"github.com/wricardo/crusade/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON document stored per session. The engine
// state is not stored: the recorded turn inputs are replayed on load.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	LevelID        string             `json:"level_id"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Turns          []engine.TurnInput `json:"turns"`
}
