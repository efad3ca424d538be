// Package session provides session management for the maze solver.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Optional file persistence of sessions
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations. Each
// session owns its own engine.GameEngine, so concurrent sessions never share
// grid state.
//
// Session Identifiers:
//
// Generated ids are the first eight hex characters of a random UUID. Caller
// supplied ids are accepted as long as they can be used as a file name, and
// lookups are case-insensitive.
//
// Persistence:
//
// FilePersistence stores one JSON document per session holding the level id
// and the list of turn inputs played so far. Loading a session replays those
// inputs against a fresh engine, which rebuilds the route, the hazard plan
// and the turn history exactly.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", levels)
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", "bend", level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	decision, err := sess.Engine.Turn(input)
//	manager.Save(sess.ID)
package session
