// Package websocket pushes solver session state to browser clients.
//
// A central Hub owns every connection. Clients attach to one session with
// the ?session= query parameter handled by the api package; after each
// played turn or reset the API broadcasts the new engine.GameState to the
// clients of that session only.
//
// Message Protocol:
//
// Every outgoing frame is one JSON Message:
//
//	{"session_id": "3f2a9c1b", "event": "state_update", "game_state": {...}}
//
// The first frame after connecting carries the "connected" event and the
// current state. Incoming frames are read and discarded.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
