package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/crusade/game/engine"
	"github.com/wricardo/crusade/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Last Crusade Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Last Crusade Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Guide Indy through a maze of rotatable rooms to the exit below the last row.
Each turn you report where Indy is (and any rocks), and the solver answers
with one rotation ("X Y LEFT" / "X Y RIGHT") or "WAIT".

AVAILABLE TOOLS:
- create_session: Start a solver session on a level
- list_sessions / get_session: Inspect sessions
- game_state: Current grid, planned route and tracked rocks
- play_turn: Report one turn's observation and get the command to play
- reset_game: Restore the level's initial grid
- turn_history: Past turns and their decisions
- list_levels: Available level files
- solve_level: Preview the route of a level without a session
- describe_cell: Shape, exits and lock state of one room
- solver_instructions: Rules of the maze and the protocol

NOTE: The 'intent' parameter on play_turn serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func entryProperty(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"enum":        []string{"TOP", "LEFT", "RIGHT"},
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new solver session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"level_id": map[string]any{
					"type":        "string",
					"description": "Id of the level to play (optional, see list_levels)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active solver sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Turn operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current grid, planned route, pending rotations and tracked rocks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_turn",
		Description: "Report Indy's position and every rock for one turn; returns the command to play",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"x": map[string]any{
					"type":        "integer",
					"description": "Column of the room Indy is in",
				},
				"y": map[string]any{
					"type":        "integer",
					"description": "Row of the room Indy is in",
				},
				"entry": entryProperty("Side Indy entered the room from"),
				"hazards": map[string]any{
					"type":        "array",
					"description": "Rocks seen this turn",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"x":     map[string]any{"type": "integer"},
							"y":     map[string]any{"type": "integer"},
							"entry": entryProperty("Side the rock entered from"),
						},
						"required": []string{"x", "y", "entry"},
					},
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset the session before playing the turn",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "What you expect this turn to achieve",
				},
			},
			Required: []string{"session_id", "x", "y", "entry"},
		},
	}, c.handlePlayTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the session to the level's initial grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn_history",
		Description: "Get the turn history of a session with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Turns per page (default 20, max 100)",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTurnHistory)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available level files",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_level",
		Description: "Preview the route and rotations of a level without creating a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"level_id": map[string]any{
					"type":        "string",
					"description": "Level to solve",
				},
				"x": map[string]any{
					"type":        "integer",
					"description": "Start column (optional, defaults to the level's start)",
				},
				"y": map[string]any{
					"type":        "integer",
					"description": "Start row (optional)",
				},
				"entry": entryProperty("Start entry side (optional)"),
			},
			Required: []string{"level_id"},
		},
	}, c.handleSolveLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one room: shape code, open sides, lock state, route and rocks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"x": map[string]any{
					"type":        "integer",
					"description": "Column",
				},
				"y": map[string]any{
					"type":        "integer",
					"description": "Row",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solver_instructions",
		Description: "Get the maze rules, room shapes and turn protocol",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil {
			if msg, ok := errResp["error"]; ok {
				return fmt.Errorf("%s", msg)
			}
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// arguments returns the tool call arguments, empty when none were sent
func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a JSON number argument
func intArg(args map[string]any, key string, def int) int {
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return def
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func sessionPath(sessionID string, parts ...string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + strings.Join(parts, "")
}

// parseNode reads x, y and entry arguments. ok is false when none are given.
func parseNode(args map[string]any) (engine.PathNode, bool, error) {
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	entry, hasEntry := args["entry"].(string)
	if !hasX && !hasY && !hasEntry {
		return engine.PathNode{}, false, nil
	}
	if !hasX || !hasY || !hasEntry {
		return engine.PathNode{}, false, fmt.Errorf("x, y and entry must be given together")
	}
	dir, ok := engine.ParseDirection(strings.ToUpper(entry))
	if !ok {
		return engine.PathNode{}, false, fmt.Errorf("invalid entry %q, expected TOP, LEFT or RIGHT", entry)
	}
	return engine.PathNode{Pos: engine.Position{X: int(x), Y: int(y)}, Entry: dir}, true, nil
}

// parseHazards decodes the hazards argument by round-tripping it through JSON
func parseHazards(raw any) ([]engine.PathNode, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("hazards must be an array")
	}
	hazards := make([]engine.PathNode, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hazard %d must be an object", i)
		}
		n, ok, err := parseNode(obj)
		if err != nil {
			return nil, fmt.Errorf("hazard %d: %w", i, err)
		}
		if !ok {
			return nil, fmt.Errorf("hazard %d: x, y and entry are required", i)
		}
		hazards = append(hazards, n)
	}
	return hazards, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	levelID := stringArg(args, "level_id")

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n", session.ID, session.LevelID)
	if session.Level != nil && session.Level.Start != nil {
		result += fmt.Sprintf("Indy starts at %s\n", session.Level.Start)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		turns := 0
		if s.GameState != nil {
			turns = s.GameState.Turn
		}
		result += fmt.Sprintf("- %s (Level: %s, Turns: %d, Created: %s)\n",
			s.ID, s.LevelID, turns, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handlePlayTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	reset := boolArg(args, "reset")

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = stringArg(args, "intent")

	player, ok, err := parseNode(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("x, y and entry are required"), nil
	}
	hazards, err := parseHazards(args["hazards"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{
		"player":  player,
		"hazards": hazards,
		"reset":   reset,
	}

	var result service.TurnResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/turn"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTurnResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message + "\n\n"
	if response.State != nil {
		result += formatGameState(response.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTurnHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	query := url.Values{}
	if page := intArg(args, "page", 0); page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit := intArg(args, "limit", 0); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		query.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Available Levels (%d):\n\n", len(levels))
	for _, l := range levels {
		start := ""
		if l.HasStart {
			start = ", has start"
		}
		result += fmt.Sprintf("- %s: %s (%dx%d, exit column %d%s)\n", l.LevelID, l.Name, l.Width, l.Height, l.ExitX, start)
		if l.Description != "" {
			result += fmt.Sprintf("  %s\n", l.Description)
		}
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolveLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	levelID := stringArg(args, "level_id")

	start, ok, err := parseNode(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := map[string]any{}
	if ok {
		body["start"] = start
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", "/api/levels/"+url.PathEscape(levelID)+"/solve", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	x := intArg(args, "x", -1)
	y := intArg(args, "y", -1)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := describeCell(&state, engine.Position{X: x, Y: y})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `# Last Crusade Solver

## The Maze
The level is a grid of rooms. Each room has a shape code:
- 0: no passage
- 1: cross, every open side leads down
- 2, 3: straight passages (left-right, top-bottom)
- 4, 5: double bends
- 6 to 9: T-shapes
- 10 to 13: single bends
A negative code is a locked room that cannot be turned.

Indy enters the top room from TOP and falls through the maze one room per
turn. The exit is below the last row at the level's exit column.

## Each Turn
1. Report Indy's room and entry side, plus every rock (x, y, entry)
2. The solver answers with one command:
   - "X Y LEFT" / "X Y RIGHT": turn room (X, Y) a quarter
   - "WAIT": nothing to do this turn
3. Play the command before the next move

## Rules the Solver Follows
- One rotation per turn, never on the room Indy stands in
- Rooms on the planned route are turned in route order, earliest first
- A rock that would hit Indy is diverted into a dead end when that is more
  urgent than building the route
- A rock that crashes into a wall or another rock is forgotten

## Tips
- Use solve_level to preview a level before playing it
- Use describe_cell to check a room's open sides
- game_state shows the pending rotations and the tracked rocks`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID, session.LevelID,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return result
}

func formatGameState(state *engine.GameState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Level: %s\n", state.LevelName)
	fmt.Fprintf(&b, "Turn: %d\n", state.Turn)
	if state.Player != nil {
		fmt.Fprintf(&b, "Indy: %s\n", state.Player)
	}
	switch {
	case state.NoPath:
		b.WriteString("Route: none, the exit cannot be reached\n")
	case state.Solved:
		fmt.Fprintf(&b, "Route: %d rooms, %d rotations pending\n", len(state.Route), len(state.Pending))
	default:
		b.WriteString("Route: not planned yet, play the first turn\n")
	}

	b.WriteString("\nGrid:\n")
	for y, row := range state.Grid {
		fmt.Fprintf(&b, "%3d | %s\n", y, row)
	}

	if len(state.Pending) > 0 {
		b.WriteString("\nPending rotations:\n")
		for _, ins := range state.Pending {
			fmt.Fprintf(&b, "  %d %d %s (route step %d)\n", ins.Pos.X, ins.Pos.Y, ins.Action, ins.Distance)
		}
	}

	if len(state.Hazards) > 0 || state.Retired > 0 {
		fmt.Fprintf(&b, "\nRocks (%d tracked, %d retired):\n", len(state.Hazards), state.Retired)
		for _, h := range state.Hazards {
			status := fmt.Sprintf("%d diversions, urgency %d", len(h.Diversions), h.Urgency)
			if h.Safe {
				status = "safe"
			}
			fmt.Fprintf(&b, "  #%d at %s: %s\n", h.ID, h.Node, status)
		}
	}

	if state.LastDecision != nil {
		fmt.Fprintf(&b, "\nLast command: %s\n", state.LastDecision)
	}
	for _, w := range state.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}

	return b.String()
}

func formatTurnResult(result *service.TurnResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Command: %s\n", result.Command)
	if result.Decision.Source == "hazard" {
		b.WriteString("(diverting a rock)\n")
	}
	if result.Warning != "" {
		fmt.Fprintf(&b, "Warning: %s\n", result.Warning)
	}
	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, e := range result.Events {
			fmt.Fprintf(&b, "  [%s] %s\n", e.Type, e.Message)
		}
	}
	if result.GameState != nil {
		b.WriteString("\n" + formatGameState(result.GameState))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Turn History (page %d of %d, %d total):\n\n",
		history.Page, history.TotalPages, history.TotalTurns)

	for _, r := range history.Turns {
		line := fmt.Sprintf("%3d. Indy %s", r.Turn, r.Input.Player)
		if n := len(r.Input.Hazards); n > 0 {
			line += fmt.Sprintf(", %d rocks", n)
		}
		line += fmt.Sprintf(" -> %s", r.Decision)
		if r.Error != "" {
			line += fmt.Sprintf(" (%s)", r.Error)
		}
		result += line + "\n"
	}

	if history.HasNext {
		result += fmt.Sprintf("\nMore turns on page %d\n", history.Page+1)
	}
	return result
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Level: %s\nStart: %s\n", result.LevelID, result.Start)
	if !result.Solved {
		fmt.Fprintf(&b, "No route: %s\n", result.Message)
		return b.String()
	}
	fmt.Fprintf(&b, "%s (%d states explored)\n", result.Message, result.Explored)

	b.WriteString("\nRoute:\n")
	for i, n := range result.Route {
		fmt.Fprintf(&b, "  %2d. %s\n", i, n)
	}
	if len(result.Instructions) > 0 {
		b.WriteString("\nRotations:\n")
		for _, ins := range result.Instructions {
			fmt.Fprintf(&b, "  %d %d %s\n", ins.Pos.X, ins.Pos.Y, ins.Action)
		}
	}
	b.WriteString("\nSolved grid:\n")
	for y, row := range result.Grid {
		fmt.Fprintf(&b, "%3d | %s\n", y, row)
	}
	return b.String()
}

// describeCell explains the room at pos from a rendered state
func describeCell(state *engine.GameState, pos engine.Position) (string, error) {
	if pos.Y < 0 || pos.Y >= len(state.Grid) {
		return "", fmt.Errorf("coordinates (%d, %d) are out of bounds, the grid has %d rows", pos.X, pos.Y, len(state.Grid))
	}
	codes := strings.Fields(state.Grid[pos.Y])
	if pos.X < 0 || pos.X >= len(codes) {
		return "", fmt.Errorf("coordinates (%d, %d) are out of bounds, row %d has %d columns", pos.X, pos.Y, pos.Y, len(codes))
	}
	code := codes[pos.X]

	var b strings.Builder
	fmt.Fprintf(&b, "Room (%d, %d): code %s\n", pos.X, pos.Y, code)

	switch code {
	case "X":
		b.WriteString("This is the exit.\n")
	case ".":
		b.WriteString("Outside the maze.\n")
	default:
		kind, locked := engine.ParseShapeCode(code)
		fmt.Fprintf(&b, "Shape: %s\n", kind)
		if locked {
			b.WriteString("Locked: cannot be turned\n")
		} else if kind != engine.Type0 {
			fmt.Fprintf(&b, "Turning LEFT gives %d, RIGHT gives %d\n", int(kind.Turned(-1)), int(kind.Turned(1)))
		}

		routes := kind.Routes()
		var passages []string
		for _, in := range engine.Directions {
			if out := routes[in]; out.Valid() {
				passages = append(passages, fmt.Sprintf("%s -> %s", in, out))
			}
		}
		if len(passages) == 0 {
			b.WriteString("Passages: none\n")
		} else {
			fmt.Fprintf(&b, "Passages: %s\n", strings.Join(passages, ", "))
		}
	}

	if state.Player != nil && state.Player.Pos == pos {
		fmt.Fprintf(&b, "Indy is here, entered from %s\n", state.Player.Entry)
	}
	for i, n := range state.Route {
		if n.Pos == pos {
			fmt.Fprintf(&b, "On the planned route at step %d\n", i)
			break
		}
	}
	for _, ins := range state.Pending {
		if ins.Pos == pos {
			fmt.Fprintf(&b, "Pending rotation: %s\n", ins.Action)
		}
	}
	for _, h := range state.Hazards {
		if h.Node.Pos == pos {
			fmt.Fprintf(&b, "Rock #%d is here, entered from %s\n", h.ID, h.Node.Entry)
		}
	}

	return b.String(), nil
}
