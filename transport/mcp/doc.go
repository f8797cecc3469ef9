// Package mcp exposes Num Dash to AI agents over the Model Context Protocol.
//
// The Client registers tools on a mark3labs/mcp-go server and forwards every
// call to the REST API, formatting the JSON responses as text an agent can read.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board rows, rule, score, lives and possible moves
//   - move / move_to: one step by direction or onto an adjacent cell
//   - next_level: continue after a completed level
//   - describe_cell: what a cell holds and whether it matches the rule
//   - event_history: paginated session events
//   - record_score / high_scores
//   - list_configs, game_instructions
//
// Sessions created through create_session default to manual glitch ticks, so
// glitches only move when the agent moves. Pass real_time to use the timer.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
