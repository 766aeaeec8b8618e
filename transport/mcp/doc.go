// Package mcp exposes the memory match game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// the api package and the JSON answer is rendered as text. Tools:
//   - create_session, list_sessions, get_session
//   - game_state, start_game, flip_card, submit_name, reset_game
//   - leaderboard, game_instructions
//
// Face-down cards render as "??" and matched cards in brackets, so an agent
// has to remember what it has seen, just like a human player.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
