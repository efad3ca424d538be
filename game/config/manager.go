package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/crusade/game/engine"
	"github.com/wricardo/crusade/game/service"
)

// DefaultLevelID is the level used when a session does not name one
const DefaultLevelID = "corridor"

var (
	ErrLevelNotFound = service.ErrLevelNotFound
	ErrInvalidLevel  = engine.ErrInvalidLevel
)

// levelExts lists the recognised level file extensions in lookup order
var levelExts = []string{".json", ".yaml", ".yml"}

// Manager handles level loading and caching
type Manager struct {
	levelsDir    string
	defaultID    string
	defaultLevel *engine.LevelConfig
	levels       map[string]*engine.LevelConfig
	mu           sync.RWMutex
}

// NewManager creates a new level manager
func NewManager(levelsDir string) (*Manager, error) {
	if _, err := os.Stat(levelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", levelsDir)
	}

	m := &Manager{
		levelsDir: levelsDir,
		levels:    make(map[string]*engine.LevelConfig),
	}

	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// levelID strips a known extension from a level name
func levelID(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range levelExts {
		if ext == known {
			return strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return name
}

// LoadLevel loads a level by id, with or without its file extension
func (m *Manager) LoadLevel(name string) (*engine.LevelConfig, error) {
	id := levelID(name)

	m.mu.RLock()
	if level, exists := m.levels[id]; exists {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, exists := m.levels[id]; exists {
		return level, nil
	}

	for _, ext := range levelExts {
		path := filepath.Join(m.levelsDir, id+ext)
		level, err := engine.LoadLevelConfig(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load level %s: %w", id, err)
		}
		m.levels[id] = level
		return level, nil
	}

	return nil, ErrLevelNotFound
}

// ListLevels returns information about all valid levels in the directory
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	seen := make(map[string]bool)
	var levels []*service.LevelInfo

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := levelID(entry.Name())
		if id == entry.Name() || seen[id] {
			continue
		}

		level, err := m.LoadLevel(id)
		if err != nil {
			log.WithError(err).WithField("file", entry.Name()).Debug("skipping invalid level")
			continue
		}
		seen[id] = true

		levels = append(levels, &service.LevelInfo{
			Filename:    entry.Name(),
			LevelID:     id,
			Name:        level.Name,
			Description: level.Description,
			Width:       level.Width,
			Height:      level.Height,
			ExitX:       level.ExitX,
			HasStart:    level.Start != nil,
		})
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].LevelID < levels[j].LevelID })
	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by id
func (m *Manager) SetDefault(name string) error {
	level, err := m.LoadLevel(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = levelID(name)
	m.defaultLevel = level
	return nil
}

// RefreshCache drops all cached levels and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	return m.loadDefaultLevel()
}

// Count returns the number of cached levels
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.levels)
}

// loadDefaultLevel resolves the default level: the configured id, then
// "corridor", then the first valid level, then the built-in corridor.
func (m *Manager) loadDefaultLevel() error {
	m.mu.RLock()
	candidates := []string{m.defaultID, DefaultLevelID}
	m.mu.RUnlock()

	for _, id := range candidates {
		if id == "" {
			continue
		}
		if level, err := m.LoadLevel(id); err == nil {
			m.setDefault(id, level)
			return nil
		}
	}

	levels, err := m.ListLevels()
	if err == nil && len(levels) > 0 {
		if level, err := m.LoadLevel(levels[0].LevelID); err == nil {
			m.setDefault(levels[0].LevelID, level)
			return nil
		}
	}

	m.setDefault("", engine.DefaultLevel())
	return nil
}

func (m *Manager) setDefault(id string, level *engine.LevelConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.defaultID == "" {
		m.defaultID = id
	}
	m.defaultLevel = level
}

// SaveLevel validates a level and writes it to disk. A .yaml or .yml
// extension selects YAML, anything else is written as JSON.
func (m *Manager) SaveLevel(name string, level *engine.LevelConfig) error {
	if err := engine.ValidateLevelConfig(level); err != nil {
		return err
	}

	id := levelID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: invalid level id %q", ErrInvalidLevel, name)
	}

	ext := strings.ToLower(filepath.Ext(name))
	var (
		data []byte
		err  error
	)
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(level)
	default:
		ext = ".json"
		data, err = json.MarshalIndent(level, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.levelsDir, id+ext), data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[id] = level
	m.mu.Unlock()

	return nil
}

// Watch invalidates cached levels when their files change. It blocks until
// ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create level watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.levelsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", m.levelsDir, err)
	}
	log.WithField("dir", m.levelsDir).Info("watching level directory")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn("level watcher overflowed, refreshing cache")
				if err := m.RefreshCache(); err != nil {
					log.WithError(err).Error("failed to refresh level cache")
				}
				continue
			}
			log.WithError(err).Error("level watcher error")
		}
	}
}

func (m *Manager) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	name := filepath.Base(event.Name)
	id := levelID(name)
	if id == name {
		return
	}

	m.invalidate(id)
	log.WithFields(log.Fields{"level": id, "op": event.Op.String()}).Debug("level file changed")
}

// invalidate drops a cached level and reloads the default if it was affected
func (m *Manager) invalidate(id string) {
	m.mu.Lock()
	delete(m.levels, id)
	isDefault := m.defaultID == id
	m.mu.Unlock()

	if !isDefault {
		return
	}
	if level, err := m.LoadLevel(id); err == nil {
		m.setDefault(id, level)
		return
	}
	log.WithField("level", id).Warn("default level is gone, falling back")
	if err := m.loadDefaultLevel(); err != nil {
		log.WithError(err).Error("failed to reload default level")
	}
}
