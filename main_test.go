package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/crusade/api"
	"github.com/wricardo/crusade/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Last Crusade Solver" {
		t.Errorf("Expected app name Last Crusade Solver, got %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("levels"); os.IsNotExist(err) {
		t.Skip("Skipping test - levels directory not found")
	}

	svc, err := initializeServices("levels", t.TempDir(), "bend")
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svc.game == nil {
		t.Fatal("Expected game service to be initialized")
	}
	if got := svc.levels.GetDefault().Name; got != "Bend" {
		t.Errorf("Expected default level Bend, got %s", got)
	}
}

func TestInitializeServices_InvalidLevelsDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path", t.TempDir(), ""); err == nil {
		t.Error("Expected error for non-existent levels directory")
	}
}

func TestInitializeServices_UnknownDefaultLevel(t *testing.T) {
	if _, err := initializeServices("levels", t.TempDir(), "atlantis"); err == nil {
		t.Error("Expected error for unknown default level")
	}
}

func TestInitializeServices_ReloadsSessions(t *testing.T) {
	sessionsDir := t.TempDir()
	ctx := context.Background()

	first, err := initializeServices("levels", sessionsDir, "")
	require.NoError(t, err)
	info, err := first.game.CreateSession(ctx, "corridor")
	require.NoError(t, err)

	second, err := initializeServices("levels", sessionsDir, "")
	require.NoError(t, err)
	got, err := second.game.GetSession(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "corridor", got.LevelID)
}

func TestPruneOrphanedSessions(t *testing.T) {
	sessionsDir := t.TempDir()
	svc, err := initializeServices("levels", sessionsDir, "")
	require.NoError(t, err)

	info, err := svc.game.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, pruneOrphanedSessions(svc.sessions, svc.persistence))

	require.NoError(t, os.Remove(filepath.Join(sessionsDir, info.ID+".json")))
	assert.Equal(t, 1, pruneOrphanedSessions(svc.sessions, svc.persistence))
	assert.Equal(t, 0, svc.sessions.Count())
}

func TestConfigureLogging(t *testing.T) {
	defer func() {
		log.SetFormatter(&log.TextFormatter{})
		log.SetLevel(log.InfoLevel)
	}()

	require.NoError(t, configureLogging("json", true))
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	require.NoError(t, configureLogging("text", false))
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	assert.Error(t, configureLogging("xml", false))
}

func TestNewApp(t *testing.T) {
	app := newApp()

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"server", "mcp", "play"}, names)

	flags := map[string]bool{}
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			flags[n] = true
		}
	}
	for _, want := range []string{"host", "port", "levels-dir", "sessions-dir", "log-format", "debug", "ngrok"} {
		assert.True(t, flags[want], "missing flag %s", want)
	}
}

func TestPlayCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader("3 3\n0 3 0\n0 3 0\n0 3 0\n1\n1 0 TOP\n0\n1 1 TOP\n0\n")
	app.Writer = &out

	err := app.Run(context.Background(), []string{"crusade", "play", "corridor"})
	require.NoError(t, err)
	assert.Equal(t, "WAIT\nWAIT\n", out.String())
}

func TestPlayCommand_BadLogFormat(t *testing.T) {
	app := newApp()
	app.Reader = strings.NewReader("")
	app.Writer = &bytes.Buffer{}

	err := app.Run(context.Background(), []string{"crusade", "--log-format", "xml", "play"})
	assert.Error(t, err)
}

func TestMCPEndpoint(t *testing.T) {
	svc, err := initializeServices("levels", t.TempDir(), "")
	require.NoError(t, err)

	apiServer := httptest.NewServer(api.NewServer(svc.game, nil))
	defer apiServer.Close()

	mux := newMux(api.NewServer(svc.game, nil), mcp.NewClient(apiServer.URL))

	t.Run("Rejects GET", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("Lists tools", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "play_turn")
		assert.Contains(t, w.Body.String(), "solve_level")
	})

	t.Run("API is mounted at root", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
