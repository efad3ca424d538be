package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wricardo/crusade/game/config"
	"github.com/wricardo/crusade/game/engine"
	"github.com/wricardo/crusade/game/service"
)

func newTestPersistence(t *testing.T) (*FilePersistence, *config.Manager) {
	t.Helper()
	levels, err := config.NewManager("../../levels")
	if err != nil {
		t.Fatalf("Failed to create level manager: %v", err)
	}
	persistence, err := NewFilePersistence(t.TempDir(), levels)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, levels
}

func newTestSession(t *testing.T, id, levelID string, level *engine.LevelConfig) *service.Session {
	t.Helper()
	eng, err := engine.NewEngine(level)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		LevelID:        levelID,
		Engine:         eng,
		Level:          level,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

func TestFilePersistence(t *testing.T) {
	persistence, levels := newTestPersistence(t)

	bend, err := levels.LoadLevel("bend")
	if err != nil {
		t.Fatalf("Failed to load bend level: %v", err)
	}
	session := newTestSession(t, "test1", "bend", bend)

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loaded.ID != session.ID || loaded.LevelID != "bend" {
			t.Errorf("Unexpected loaded session %s/%s", loaded.ID, loaded.LevelID)
		}
		if loaded.Level.Name != session.Level.Name {
			t.Errorf("Expected level name %s, got %s", session.Level.Name, loaded.Level.Name)
		}
		if loaded.Engine.GetState().Turn != 0 {
			t.Errorf("Expected a fresh engine, got turn %d", loaded.Engine.GetState().Turn)
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		turns := []engine.TurnInput{
			{Player: engine.PathNode{Pos: engine.Position{X: 1, Y: 0}, Entry: engine.Up}},
			{Player: engine.PathNode{Pos: engine.Position{X: 1, Y: 1}, Entry: engine.Up}},
		}
		for _, in := range turns {
			if _, err := session.Engine.Turn(in); err != nil {
				t.Fatalf("Turn failed: %v", err)
			}
		}

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}

		want := session.Engine.GetState()
		got := loaded.Engine.GetState()
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Replayed state mismatch (-want +got):\n%s", diff)
		}
		if len(loaded.Engine.GetTurnHistory()) != 2 {
			t.Errorf("Expected 2 replayed turns, got %d", len(loaded.Engine.GetTurnHistory()))
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		session2 := newTestSession(t, "test2", "", levels.GetDefault())
		if err := persistence.Save(session2); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if len(sessionIDs) != 2 || !found["test1"] || !found["test2"] {
			t.Errorf("Expected test1 and test2, got %v", sessionIDs)
		}

		loaded, err := persistence.Load("test2")
		if err != nil {
			t.Fatalf("Failed to load default level session: %v", err)
		}
		if loaded.Level.Name != levels.GetDefault().Name {
			t.Errorf("Expected default level, got %s", loaded.Level.Name)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}
		if _, err := persistence.Load("test2"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); err == nil {
			t.Error("Should get error when loading non-existent session")
		}
		if err := persistence.Delete("nonexistent"); err == nil {
			t.Error("Should get error when deleting non-existent session")
		}
		if err := persistence.Save(nil); err == nil {
			t.Error("Should get error when saving nil session")
		}
		if _, err := persistence.Load("../etc/passwd"); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("Unknown Level", func(t *testing.T) {
		orphan := newTestSession(t, "orphan", "removed-level", bend)
		if err := persistence.Save(orphan); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if _, err := persistence.Load("orphan"); !errors.Is(err, config.ErrLevelNotFound) {
			t.Errorf("Expected ErrLevelNotFound, got %v", err)
		}
	})
}

func TestFilePersistenceFileStructure(t *testing.T) {
	persistence, levels := newTestPersistence(t)

	session := newTestSession(t, "file_test", "corridor", levels.GetDefault())
	if _, err := session.Engine.Turn(engine.TurnInput{
		Player:  engine.PathNode{Pos: engine.Position{X: 1, Y: 0}, Entry: engine.Up},
		Hazards: []engine.PathNode{{Pos: engine.Position{X: 1, Y: 2}, Entry: engine.Up}},
	}); err != nil {
		t.Fatalf("Turn failed: %v", err)
	}
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(persistence.sessionsDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Session file is not valid JSON: %v", err)
	}
	for _, field := range []string{"id", "level_id", "created_at", "last_accessed_at", "turns"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("Session file should contain field %s", field)
		}
	}

	var persisted PersistedSessionData
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("Failed to decode session file: %v", err)
	}
	if len(persisted.Turns) != 1 || len(persisted.Turns[0].Hazards) != 1 {
		t.Errorf("Expected one turn with one hazard, got %+v", persisted.Turns)
	}

	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should not be left behind")
	}
}
