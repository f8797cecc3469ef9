// Package score keeps the Num Dash high-score table.
//
// Store is implemented by FileStore (a JSON file holding the best ten entries)
// and MemoryStore. Recorder wraps a store for fire-and-forget recording at game
// over: the save runs in the background, and a failure is logged and surfaced to
// the session as a notice without affecting play.
package score
