package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/crusade/game/engine"
	"github.com/wricardo/crusade/game/service"
	"github.com/wricardo/crusade/transport/websocket"
)

// maxBodySize bounds request bodies; levels are at most 20x20 codes
const maxBodySize = 1 << 20

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case state
// is not pushed and /ws is unavailable.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Turn operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/turn", s.handleTurn).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Levels
	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels", s.handleCreateLevel).Methods("POST")
	api.HandleFunc("/levels/{name}", s.handleGetLevel).Methods("GET")
	api.HandleFunc("/levels/{name}/solve", s.handleSolve).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrLevelNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidLevel), errors.Is(err, service.ErrStartRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LevelID string `json:"level_id,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.LevelID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	log.WithFields(log.Fields{"session": session.ID, "level": session.LevelID}).Info("session created")
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return
	levelID := query.Get("level")  // only sessions playing this level

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if levelID != "" {
		filtered := sessions[:0]
		for _, sess := range sessions {
			if sess.LevelID == levelID {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}
	total := len(sessions)

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Turn Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// turnRequest is one observation. Player is required; Hazards lists every
// moving hazard seen this turn.
type turnRequest struct {
	Player  *engine.PathNode  `json:"player"`
	Hazards []engine.PathNode `json:"hazards,omitempty"`
	Reset   bool              `json:"reset,omitempty"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req turnRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Player == nil {
		respondError(w, http.StatusBadRequest, "player is required")
		return
	}

	input := engine.TurnInput{Player: *req.Player, Hazards: req.Hazards}
	result, err := s.service.PlayTurn(r.Context(), sessionID, input, req.Reset)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result.GameState)
	}

	fields := log.Fields{
		"session": sessionID,
		"turn":    result.Decision.Turn,
		"player":  req.Player.String(),
		"hazards": len(req.Hazards),
		"command": result.Command,
	}
	if result.Decision.Source != "" {
		fields["source"] = result.Decision.Source
	}
	if result.Warning != "" {
		log.WithFields(fields).Warn(result.Warning)
	} else {
		log.WithFields(fields).Info("turn played")
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Session reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetTurnHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Level Handlers

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.service.ListLevels(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if levels == nil {
		levels = []*service.LevelInfo{}
	}

	respondJSON(w, http.StatusOK, levels)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	level, err := s.service.LoadLevel(r.Context(), name)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, level)
}

var nonIDChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// levelIDFromName derives a file-safe level id from a display name
func levelIDFromName(name string) string {
	id := nonIDChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(id, "_")
}

func (s *Server) handleCreateLevel(w http.ResponseWriter, r *http.Request) {
	var level engine.LevelConfig
	if err := decodeBody(r, &level); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	levelID := r.URL.Query().Get("id")
	if levelID == "" {
		levelID = levelIDFromName(level.Name)
	}
	if levelID == "" {
		respondError(w, http.StatusBadRequest, "Level name is required")
		return
	}
	if format := r.URL.Query().Get("format"); format == "yaml" || format == "yml" {
		levelID += "." + format
	}

	if err := s.service.SaveLevel(r.Context(), levelID, &level); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save level: %v", err))
		return
	}

	log.WithFields(log.Fields{"level": levelID, "name": level.Name}).Info("level saved")
	respondJSON(w, http.StatusCreated, map[string]any{
		"message":  "Level saved successfully",
		"level_id": strings.TrimSuffix(strings.TrimSuffix(levelID, ".yaml"), ".yml"),
	})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		Start *engine.PathNode `json:"start,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Solve(r.Context(), name, req.Start)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID, state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
