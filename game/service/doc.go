// Package service provides the business logic layer for the memory match game.
//
// The service package implements:
//   - Multi-session game management
//   - Player commands (start, flip, name, reset)
//   - Masked game state for clients
//   - Leaderboard and configuration access
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager provides the configuration new sessions use.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game sessions. Every state it returns is masked: cards that are face
// down carry image_id -1 and no image, so a client cannot read the board.
// Commands that are not valid in the current state are not errors; they come
// back with applied=false and an explanatory message.
//
// Usage:
//
//	sessionMgr := session.NewManager(session.Options{Recorder: book})
//	configMgr, _ := config.NewManager("")
//	gameService := service.NewGameService(sessionMgr, configMgr, book)
//
//	info, err := gameService.CreateSession(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Start(ctx, info.ID)
//	result, err = gameService.Flip(ctx, info.ID, 3)
package service
