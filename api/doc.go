// Package api provides the HTTP REST API of the maze solver.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"level_id": "bend"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&level=ID)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Turns:
//   - GET /api/sessions/{id}/state - Current engine state
//   - POST /api/sessions/{id}/turn - Play one turn
//   - POST /api/sessions/{id}/reset - Restore the initial grid
//   - GET /api/sessions/{id}/history - Turn history (?page=N&limit=N&order=asc|desc)
//
// Levels:
//   - GET /api/levels - List level files
//   - POST /api/levels - Save a level (?id=ID&format=json|yaml)
//   - GET /api/levels/{name} - Get a level
//   - POST /api/levels/{name}/solve - Preview the route ({"start": node}, optional)
//
// Other:
//   - GET /health
//   - GET /ws?session=ID - WebSocket state stream
//
// A turn body carries the observation of one game turn:
//
//	{
//	  "player":  {"pos": {"x": 1, "y": 0}, "entry": "TOP"},
//	  "hazards": [{"pos": {"x": 0, "y": 1}, "entry": "LEFT"}],
//	  "reset":   false
//	}
//
// The response holds the decision, the protocol command ("1 1 LEFT" or
// "WAIT"), the events of the turn and the new state.
//
// Errors are returned as {"error": "message"}. Unknown sessions and levels
// map to 404, invalid levels and missing start nodes to 400.
package api
