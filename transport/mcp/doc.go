// Package mcp exposes the maze solver to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API served by the api package, and the JSON response is
// rendered as text for the agent.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: grid, planned route, pending rotations and tracked rocks
//   - play_turn: report one observation, get the command to play
//   - reset_game: restore the initial grid
//   - turn_history: paginated turn history
//   - list_levels, solve_level: level listing and stateless route preview
//   - describe_cell: shape, passages and lock state of one room
//   - solver_instructions: rules and turn protocol
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
