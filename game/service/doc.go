// Package service provides the business logic layer of the maze solver.
//
// The service package implements:
//   - Multi-session management, one engine per session
//   - Turn processing and event reporting
//   - Stateless route previews for a level
//   - Turn history pagination
//
// Core Interfaces:
//
// GameService is the main service interface used by the transports.
// SessionManager stores sessions and persists them. LevelManager loads
// and saves level files.
//
// Usage:
//
//	levels, _ := config.NewManager("levels")
//	sessions := session.NewManager()
//	svc := service.NewGameService(sessions, levels)
//
//	info, err := svc.CreateSession(ctx, "bend")
//	result, err := svc.PlayTurn(ctx, info.ID, engine.TurnInput{Player: start}, false)
//	fmt.Println(result.Command)
package service
