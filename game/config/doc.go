// Package config provides configuration management for the memory match game.
//
// The config package handles:
//   - Loading the game configuration from a JSON file
//   - Falling back to the built-in board when no file is given
//   - Writing a configuration file for editing
//   - Process settings from the environment and .env files
//
// Configuration Format:
//
//	{
//	  "name": "classic",
//	  "description": "Find all ten pairs before the clock runs out",
//	  "rows": 5,
//	  "cols": 4,
//	  "duration_seconds": 180,
//	  "mismatch_delay_ms": 1000,
//	  "images": ["apple", "banana", "..."]
//	}
//
// The image pool must hold at least rows*cols/2 distinct entries.
//
// Usage:
//
//	manager, err := config.NewManager(os.Getenv("CONFIG_FILE"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameConfig := manager.GetDefault()
package config
