// Package api provides HTTP REST API handlers for Num Dash.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {config_id, mode, player_name, seed, manual_tick}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions side by side (?sessionIds=a,b or ?configName=classic)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Stop and remove a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/move - Move by {"direction": "up"} or onto {"x": 1, "y": 2}
//   - POST /api/sessions/{id}/next-level - Advance after a completed level
//   - GET /api/sessions/{id}/cell?x=1&y=2 - Describe one cell
//   - GET /api/sessions/{id}/history - Event history (?page=1&limit=20&order=desc)
//   - POST /api/sessions/{id}/score - Record a finished game {"player_name": "Ada"}
//
// Scores and Configuration:
//   - GET /api/scores - High score table (?limit=N)
//   - GET /api/configs - List level catalogues
//   - GET /api/configs/{name} - Get a catalogue
//   - POST /api/configs - Save a catalogue (optional "config_id" picks the file name)
//
// Other:
//   - GET /health - Liveness
//   - GET /ws?session={id} - WebSocket snapshot stream
//
// Move responses carry the outcome ("collect_correct", "blocked", ...), the
// events it produced and the snapshot after it. A move the rules ignore is a
// 200 with success=false, not an error.
//
// Errors are returned as JSON with a matching status code: 404 for unknown
// sessions or catalogues, 400 for bad input, 409 for operations the game state
// does not allow (moving while starting, next level before completion) and 503
// when the score table cannot be written.
//
//	{"error": "game is not in play: status is starting"}
package api
