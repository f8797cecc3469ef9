// Package engine provides the core game logic for Num Dash.
//
// The engine package implements the game mechanics including:
//   - Grid utilities and cell values (literal integers or arithmetic expressions)
//   - The rule catalogue (parity, primality, targets, factors, expression rules)
//   - Procedural board generation with a guaranteed number of matching cells
//   - The movement resolver and glitch AI
//   - Level catalogue loading, validation and challenge scaling
//
// Core Types:
//
// GameState is one level in play. Reduce is the pure transition function over
// move, tick and activate actions; it never modifies its input and returns the
// next state with the events it emitted. GameEngine wraps a committed state and
// always reduces from it, so a move and a glitch tick can never be applied to two
// divergent snapshots.
//
// Usage:
//
//	config := engine.DefaultGameConfig()
//	plan, _ := config.PlanLevel(1, false)
//
//	gameEngine, err := engine.NewEngine(config, plan, 0, config.Lives, rand.New(rand.NewSource(1)))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res := gameEngine.Move(engine.Up)
//	if res.HasEvent(engine.EventLevelComplete) {
//		// build the next level
//	}
//
// Game Rules:
//
// Collecting a number that matches the rule scores 10 points. Collecting any
// other number costs a life and the player stays where they stepped. Glitches
// wander until at most one matching number remains, then chase; contact with a
// glitch costs a life only in that endgame and sends the player back to the start.
package engine
