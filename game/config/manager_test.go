package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wricardo/crusade/game/engine"
)

func createValidLevel() *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        "Test Level",
		Description: "Test level",
		Width:       4,
		Height:      3,
		Rows: []string{
			"0 -3 0 0",
			"0 12 10 0",
			"0 0 2 0",
		},
		ExitX: 2,
		Start: &engine.PathNode{Pos: engine.Position{X: 1, Y: 0}, Entry: engine.Up},
	}
}

func writeLevelFile(t *testing.T, dir, name string, level *engine.LevelConfig) {
	t.Helper()
	data, err := json.MarshalIndent(level, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal level: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		corridor := createValidLevel()
		corridor.Name = "Corridor"
		writeLevelFile(t, dir, "corridor", corridor)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Corridor" {
			t.Errorf("Expected corridor as default, got '%s'", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in level", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without level files, got error: %v", err)
		}
		defaultLevel := manager.GetDefault()
		if defaultLevel == nil {
			t.Fatal("Expected default level to be available")
		}
		if defaultLevel.Name != engine.DefaultLevel().Name {
			t.Errorf("Expected built-in level, got '%s'", defaultLevel.Name)
		}
	})

	t.Run("first valid level when corridor is missing", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"zigzag", "bend"} {
			level := createValidLevel()
			level.Name = name
			writeLevelFile(t, dir, name, level)
		}

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "bend" {
			t.Errorf("Expected 'bend' as default, got '%s'", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadLevel(t *testing.T) {
	dir := t.TempDir()

	bend := createValidLevel()
	bend.Name = "Bend"
	writeLevelFile(t, dir, "bend", bend)

	yamlLevel := "name: Straight\nwidth: 1\nheight: 2\nrows: [\"3\", \"-3\"]\nexit_x: 0\n"
	if err := os.WriteFile(filepath.Join(dir, "straight.yaml"), []byte(yamlLevel), 0644); err != nil {
		t.Fatalf("Failed to write yaml level: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing level", func(t *testing.T) {
		level, err := manager.LoadLevel("bend")
		if err != nil {
			t.Fatalf("Failed to load level: %v", err)
		}
		if level.Name != "Bend" {
			t.Errorf("Expected level name 'Bend', got '%s'", level.Name)
		}
	})

	t.Run("load with extension", func(t *testing.T) {
		level, err := manager.LoadLevel("bend.json")
		if err != nil {
			t.Fatalf("Failed to load level with extension: %v", err)
		}
		if level.Name != "Bend" {
			t.Errorf("Expected level name 'Bend', got '%s'", level.Name)
		}
	})

	t.Run("load yaml level", func(t *testing.T) {
		level, err := manager.LoadLevel("straight")
		if err != nil {
			t.Fatalf("Failed to load yaml level: %v", err)
		}
		if level.Height != 2 || level.Start != nil {
			t.Errorf("Unexpected yaml level: %+v", level)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		level1, _ := manager.LoadLevel("bend")
		level2, err := manager.LoadLevel("bend")
		if err != nil {
			t.Fatalf("Failed to load level from cache: %v", err)
		}
		if level1 != level2 {
			t.Error("Expected level to be loaded from cache")
		}
	})

	t.Run("load non-existent level", func(t *testing.T) {
		_, err := manager.LoadLevel("non-existent")
		if !errors.Is(err, ErrLevelNotFound) {
			t.Errorf("Expected ErrLevelNotFound, got %v", err)
		}
	})

	t.Run("load invalid level", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644); err != nil {
			t.Fatalf("Failed to write invalid level: %v", err)
		}
		_, err := manager.LoadLevel("invalid")
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Expected ErrInvalidLevel, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644); err != nil {
			t.Fatalf("Failed to write malformed level: %v", err)
		}
		if _, err := manager.LoadLevel("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_ListLevels(t *testing.T) {
	dir := t.TempDir()

	names := []string{"corridor", "bend", "crossing", "spiral"}
	for _, name := range names {
		level := createValidLevel()
		level.Name = name
		writeLevelFile(t, dir, name, level)
	}

	// ignored: not a level file, and an invalid level
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": "broken"}`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	levels, err := manager.ListLevels()
	if err != nil {
		t.Fatalf("Failed to list levels: %v", err)
	}
	if len(levels) != 4 {
		t.Fatalf("Expected 4 levels, got %d", len(levels))
	}

	want := []string{"bend", "corridor", "crossing", "spiral"}
	for i, info := range levels {
		if info.LevelID != want[i] {
			t.Errorf("Expected level %d to be '%s', got '%s'", i, want[i], info.LevelID)
		}
		if !info.HasStart || info.Width != 4 || info.Height != 3 {
			t.Errorf("Unexpected level info: %+v", info)
		}
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeLevelFile(t, dir, "corridor", createValidLevel())
	other := createValidLevel()
	other.Name = "Other"
	writeLevelFile(t, dir, "other", other)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.GetDefault().Name != "Other" {
		t.Errorf("Expected 'Other' as default, got '%s'", manager.GetDefault().Name)
	}

	if err := manager.SetDefault("missing"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("Expected ErrLevelNotFound, got %v", err)
	}
	if manager.GetDefault().Name != "Other" {
		t.Error("Failed SetDefault should keep the previous default")
	}
}

func TestManager_SaveLevel(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("json", func(t *testing.T) {
		level := createValidLevel()
		level.Name = "Saved"
		if err := manager.SaveLevel("saved", level); err != nil {
			t.Fatalf("Failed to save level: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}
		loaded, err := engine.LoadLevelConfig(filepath.Join(dir, "saved.json"))
		if err != nil {
			t.Fatalf("Saved level does not load: %v", err)
		}
		if loaded.Name != "Saved" || loaded.Start.Entry != engine.Up {
			t.Errorf("Unexpected saved level: %+v", loaded)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		level := createValidLevel()
		level.Name = "Saved YAML"
		if err := manager.SaveLevel("saved_yaml.yaml", level); err != nil {
			t.Fatalf("Failed to save level: %v", err)
		}
		loaded, err := engine.LoadLevelConfig(filepath.Join(dir, "saved_yaml.yaml"))
		if err != nil {
			t.Fatalf("Saved level does not load: %v", err)
		}
		if loaded.Name != "Saved YAML" || loaded.Rows[1] != "0 12 10 0" {
			t.Errorf("Unexpected saved level: %+v", loaded)
		}

		cached, err := manager.LoadLevel("saved_yaml")
		if err != nil || cached != level {
			t.Errorf("Expected saved level in cache, got %v, %v", cached, err)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		level := createValidLevel()
		level.Width = 0
		if err := manager.SaveLevel("bad", level); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Expected ErrInvalidLevel, got %v", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		if err := manager.SaveLevel("../escape", createValidLevel()); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Expected ErrInvalidLevel, got %v", err)
		}
	})
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()

	level := createValidLevel()
	level.Name = "Changeable"
	writeLevelFile(t, dir, "corridor", level)
	writeLevelFile(t, dir, "changeable", level)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadLevel("changeable")
	if loaded.Description != "Test level" {
		t.Errorf("Unexpected initial description '%s'", loaded.Description)
	}

	level.Description = "Changed"
	writeLevelFile(t, dir, "changeable", level)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}

	reloaded, _ := manager.LoadLevel("changeable")
	if reloaded.Description != "Changed" {
		t.Errorf("Expected reloaded description 'Changed', got '%s'", reloaded.Description)
	}
}

func TestManager_HandleEvent(t *testing.T) {
	dir := t.TempDir()
	level := createValidLevel()
	level.Name = "Corridor"
	writeLevelFile(t, dir, "corridor", level)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	level.Name = "Corridor v2"
	writeLevelFile(t, dir, "corridor", level)
	manager.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "corridor.json"), Op: fsnotify.Write})

	if manager.GetDefault().Name != "Corridor v2" {
		t.Errorf("Expected default to follow the file, got '%s'", manager.GetDefault().Name)
	}

	// non level files are ignored
	manager.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write})
	if manager.Count() != 1 {
		t.Errorf("Expected 1 cached level, got %d", manager.Count())
	}

	os.Remove(filepath.Join(dir, "corridor.json"))
	manager.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "corridor.json"), Op: fsnotify.Remove})
	if manager.GetDefault().Name != engine.DefaultLevel().Name {
		t.Errorf("Expected built-in fallback, got '%s'", manager.GetDefault().Name)
	}
}

func TestManager_Watch(t *testing.T) {
	dir := t.TempDir()
	level := createValidLevel()
	level.Name = "Watched"
	writeLevelFile(t, dir, "watched", level)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if _, err := manager.LoadLevel("watched"); err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- manager.Watch(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		// rewrite until the watcher is running and picks the change up
		level.Description = "updated"
		writeLevelFile(t, dir, "watched", level)
		time.Sleep(50 * time.Millisecond)

		loaded, err := manager.LoadLevel("watched")
		if err == nil && loaded.Description == "updated" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Watcher did not invalidate the cached level")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop after cancel")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		level := createValidLevel()
		level.Name = fmt.Sprintf("Level%d", i)
		writeLevelFile(t, dir, fmt.Sprintf("level%d", i), level)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 60)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadLevel(fmt.Sprintf("level%d", id%5+1)); err != nil {
				errs <- err
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := manager.RefreshCache(); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() < 1 {
		t.Errorf("Expected cached levels, got %d", manager.Count())
	}
}
