package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/crusade/game/engine"
	"github.com/wricardo/crusade/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// sessionIDLength is the number of hex characters kept from a generated UUID
const sessionIDLength = 8

// Manager keeps solver sessions in memory, keyed by lower-cased id, and
// mirrors them to an optional SessionPersistence.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*service.Session
	persistence SessionPersistence
}

// NewManager creates a memory-only session manager
func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a session manager that writes every
// change through persistence. A nil persistence keeps sessions in memory.
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// key normalizes a session id; ids are case-insensitive
func key(id string) string { return strings.ToLower(id) }

func validID(id string) bool {
	return !strings.ContainsAny(id, `/\ `) && !strings.HasPrefix(id, ".")
}

// Create creates a new session playing the given level. An empty id is
// replaced by a generated one.
func (m *Manager) Create(id, levelID string, level *engine.LevelConfig) (*service.Session, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	eng, err := engine.NewEngine(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	if id == "" {
		id = m.generateSessionID()
	} else if m.sessionExists(id) {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}
	now := time.Now()
	sess := &service.Session{
		ID:             id,
		LevelID:        levelID,
		Engine:         eng,
		Level:          level,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = sess
	m.mu.Unlock()

	log.WithFields(log.Fields{"session": id, "level": levelID}).Info("session created")
	m.persist(sess, "failed to persist session")
	return sess, nil
}

// Get returns a session, loading it from persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	if sess, ok := m.lookup(id); ok {
		return sess, nil
	}
	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// a concurrent Get may have loaded it first
	if sess, ok := m.sessions[key(id)]; ok {
		return sess, nil
	}
	m.sessions[key(id)] = loaded
	log.WithField("session", id).Debug("session restored from storage")
	return loaded, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id, levelID string, level *engine.LevelConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, levelID, level)
	}
	return sess, err
}

// List returns all sessions held in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Delete removes a session from memory and from persistence
func (m *Manager) Delete(id string) error {
	inMemory := m.DeleteFromMemory(id) == nil

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session without touching persistence
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed marks a session as used now
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[key(id)]
	if ok {
		sess.LastAccessedAt = time.Now()
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	m.persist(sess, "failed to persist session after access update")
	return nil
}

// Save writes one session to persistence. It is a no-op without persistence.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}
	sess, ok := m.lookup(id)
	if !ok {
		return ErrSessionNotFound
	}
	return m.persistence.Save(sess)
}

// CleanupExpiredSessions evicts sessions that haven't been accessed in the
// given duration. Persisted copies are kept and reload on the next Get.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	removed := 0
	for k, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			removed++
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		log.WithField("removed", removed).Info("expired sessions evicted")
	}
	return removed
}

// Count returns the number of sessions held in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions loads every persisted session not yet in memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loaded := 0
	for _, id := range ids {
		if _, ok := m.lookup(id); ok {
			continue
		}
		sess, err := m.persistence.Load(id)
		if err != nil {
			log.WithError(err).WithField("session", id).Warn("failed to load persisted session")
			continue
		}

		m.mu.Lock()
		if _, ok := m.sessions[key(id)]; !ok {
			m.sessions[key(id)] = sess
			loaded++
		}
		m.mu.Unlock()
	}

	if loaded > 0 {
		log.WithField("count", loaded).Info("loaded persisted sessions from storage")
	}
	return nil
}

// SaveAllSessions writes every in-memory session to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	failed := 0
	for _, sess := range m.List() {
		if err := m.persistence.Save(sess); err != nil {
			log.WithError(err).WithField("session", sess.ID).Warn("failed to save session")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}

func (m *Manager) lookup(id string) (*service.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[key(id)]
	return sess, ok
}

// persist saves sess when persistence is enabled. Failures are logged only.
func (m *Manager) persist(sess *service.Session, msg string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(sess); err != nil {
		log.WithError(err).WithField("session", sess.ID).Warn(msg)
	}
}

// sessionExists reports whether id is in memory. Callers hold m.mu.
func (m *Manager) sessionExists(id string) bool {
	_, ok := m.sessions[key(id)]
	return ok
}

// generateSessionID returns a short random id not used by any session.
// Callers hold m.mu.
func (m *Manager) generateSessionID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionIDLength]
		if !m.sessionExists(id) && (m.persistence == nil || !m.persistence.Exists(id)) {
			return id
		}
	}
}
