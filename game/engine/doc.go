// Package engine provides the core logic of the rotating-tile maze solver.
//
// A level is a grid of connector pieces. Each piece routes a mover entering
// from one side to an exit side; unlocked pieces can be turned a quarter at a
// time. The player falls through the maze from its entry cell and must reach
// the exit below the last row. Moving hazards travel the same way and must be
// kept off the player's route.
//
// Core Types:
//
// Connector is a single piece (base kind plus orientation), Grid holds the
// pieces keyed by Position. PathSolver searches for a rotation plan that
// routes the player to the exit. HazardPlanner simulates each hazard's
// trajectory and schedules diversions. GameEngine runs the turn loop on top
// of both and implements the Engine interface.
//
// Usage:
//
//	level, err := engine.LoadLevelConfig("levels/bend.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	e, err := engine.NewEngine(level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	decision, err := e.Turn(engine.TurnInput{Player: *level.Start})
//	fmt.Println(decision) // "1 1 LEFT" or "WAIT"
//
// Turn Rules:
//
// One rotation can be played per turn. Route construction is played in
// order unless a hazard diversion is more urgent, in which case the
// diversion goes first. The cell holding the player is never rotated.
package engine
