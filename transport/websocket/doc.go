// Package websocket pushes Num Dash session snapshots to browsers.
//
// A central Hub tracks clients by session ID. Each connection has a read pump
// that keeps it alive and a write pump that delivers queued messages, one JSON
// frame per message. Moves are sent over the REST API; the socket is only the
// push channel.
//
// Message Protocol:
//
//	{"session_id": "ab12", "event": "connected", "snapshot": {...}}
//	{"session_id": "ab12", "event": "state_update", "snapshot": {...}}
//
// "connected" is sent once with the snapshot at connection time. "state_update"
// follows every move, glitch tick and level transition.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Close()
//
//	sessions := session.NewManager(session.WithNotifier(hub.BroadcastSnapshot))
//
// Broadcasts never block the caller. When the queue is full the update is
// dropped and logged; the next update carries the complete state anyway.
package websocket
