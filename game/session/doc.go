// Package session runs Num Dash games and keeps track of them.
//
// Controller is the level state machine for one game. It moves through
// starting, playing, level_complete and game_over, owns the engine for the
// current level, and drives the glitches with a timer: the first tick waits out
// the grace period and activates them, later ticks move them once per level
// interval. Player moves and ticks serialize on the controller's mutex, and each
// timer is tagged with an epoch so that a tick from a finished or replaced level
// never touches the new one.
//
// Manager is the thread-safe registry of controllers keyed by 4-character IDs.
//
// Usage:
//
//	manager := session.NewManager(
//		session.WithRecorder(score.NewRecorder(store)),
//		session.WithNotifier(hub.BroadcastSnapshot),
//	)
//
//	sess, err := manager.Create("", config, service.CreateSessionOptions{PlayerName: "ada"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, events, err := sess.Game.Move(engine.Right)
//
// Sessions can be explicitly deleted or may expire based on inactivity.
// Both stop the game's timer.
package session
