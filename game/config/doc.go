// Package config provides level management for the maze solver.
//
// The config package handles:
//   - Loading levels from JSON and YAML files
//   - Caching parsed levels by id
//   - Default level selection
//   - Level discovery and listing
//   - Invalidating the cache when level files change on disk
//
// Level Format:
//
// A level file holds the grid as rows of space separated shape codes. Codes
// 1 to 13 are rotatable pieces, a negative code is the same piece locked in
// place, and 0 (or anything unparsable) has no connection:
//
//	{
//	  "name": "Bend",
//	  "width": 4,
//	  "height": 3,
//	  "rows": ["0 -3 0 0", "0 12 10 0", "0 0 2 0"],
//	  "exit_x": 2,
//	  "start": {"pos": {"x": 1, "y": 0}, "entry": "TOP"}
//	}
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadLevel("bend")
//	levels, err := manager.ListLevels()
//
//	// keep the cache in sync with the directory
//	go manager.Watch(ctx)
package config
