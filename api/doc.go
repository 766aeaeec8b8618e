// Package api provides HTTP REST API handlers for the memory match game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session
//   - GET /api/sessions - List sessions, most recently used first (?limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current (masked) game state
//   - POST /api/sessions/{id}/start - Deal a new board and start the clock
//   - POST /api/sessions/{id}/flip - Flip one card: {"index": 3}
//   - POST /api/sessions/{id}/name - Record a win: {"name": "Ana"}
//   - POST /api/sessions/{id}/reset - Abandon the current game
//
// Other:
//   - GET /api/leaderboard - Top five results
//   - GET /api/config - Active game configuration
//   - GET /health - Liveness check
//   - GET /ws?session={id} - WebSocket stream of state snapshots and signals
//
// Commands always answer 200 with a CommandResult. A command that is not
// valid in the current phase comes back with "applied": false and leaves the
// game untouched.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "session abc: session not found"}
//
// Unknown sessions map to 404, malformed bodies and IDs to 400, and anything
// else to 500.
package api
