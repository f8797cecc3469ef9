package engine

import (
	"fmt"
	"math/rand"
)

// ActionType names a transition the reducer understands
type ActionType string

const (
	ActionMove     ActionType = "move"
	ActionTick     ActionType = "tick"
	ActionActivate ActionType = "activate"
)

// Action is one input to Reduce. A move carries either a Direction or a Destination.
type Action struct {
	Type        ActionType `json:"type"`
	Direction   Direction  `json:"direction,omitempty"`
	Destination *Position  `json:"destination,omitempty"`
}

// MoveAction builds a move action in a direction
func MoveAction(d Direction) Action {
	return Action{Type: ActionMove, Direction: d}
}

// MoveToAction builds a move action to a destination cell
func MoveToAction(p Position) Action {
	return Action{Type: ActionMove, Destination: &p}
}

// Reduce applies one action to a state and returns the next state with its events.
// The input state is never modified.
func Reduce(state *GameState, action Action, rng *rand.Rand, d DifficultyContext) Resolution {
	switch action.Type {
	case ActionMove:
		if state == nil {
			return Resolution{State: state, Outcome: OutcomeIgnored}
		}
		if action.Destination != nil {
			return ResolveMove(state, *action.Destination, rng, d)
		}
		dir, ok := ParseDirection(string(action.Direction))
		if !ok {
			return Resolution{State: state, Outcome: OutcomeIgnored}
		}
		return ResolveMove(state, state.PlayerPos.Step(dir), rng, d)
	case ActionTick:
		return ResolveTick(state, rng, d)
	case ActionActivate:
		return ActivateGlitches(state)
	}
	return Resolution{State: state, Outcome: OutcomeIgnored}
}

// ResolveMove resolves the player stepping onto dest.
// Non-adjacent, out-of-bounds and enemy-occupied destinations are ignored; walls block.
func ResolveMove(prev *GameState, dest Position, rng *rand.Rand, d DifficultyContext) Resolution {
	ignored := Resolution{State: prev, Outcome: OutcomeIgnored}
	if prev == nil || prev.GameOver || prev.LevelComplete {
		return ignored
	}
	if !InBounds(dest, prev.GridSize) || !IsAdjacent(prev.PlayerPos, dest) || prev.EnemyAt(dest) {
		return ignored
	}
	if prev.IsWall(dest) {
		return Resolution{State: prev, Outcome: OutcomeBlocked}
	}

	next := prev.Clone()
	next.PlayerFacing = directionBetween(prev.PlayerPos, dest)
	outcome := OutcomePlainMove
	var events []Event

	if idx := numberIndex(next.RemainingNumbers, dest); idx != -1 {
		cell := next.RemainingNumbers[idx]
		next.RemainingNumbers = append(next.RemainingNumbers[:idx], next.RemainingNumbers[idx+1:]...)

		if next.Rule.Matches(cell.Value) {
			next.Score += PointsPerNumber
			outcome = OutcomeCollectCorrect
			events = append(events, Event{
				Type:       EventScore,
				Message:    fmt.Sprintf("Collected %s! +%d points", cell.Value.Display, PointsPerNumber),
				Position:   dest,
				ScoreDelta: PointsPerNumber,
				Score:      next.Score,
				Lives:      next.Lives,
			})
		} else {
			next.Lives--
			outcome = OutcomeCollectWrong
			events = append(events, Event{
				Type:     EventLifeLost,
				Message:  fmt.Sprintf("%s does not match %s. Lost a life!", cell.Value.Display, next.Rule.Name()),
				Position: dest,
				Score:    next.Score,
				Lives:    next.Lives,
			})
			if next.Lives <= 0 {
				return terminal(prev, outcome, events)
			}
		}
	}

	next.PlayerPos = dest
	next.TotalMoves++

	if next.GlitchesActive {
		events = append(events, moveGlitches(next, rng, d)...)
	}
	return settle(prev, next, outcome, events)
}

// ResolveTick advances the glitches one step. Ticks before activation are ignored.
func ResolveTick(prev *GameState, rng *rand.Rand, d DifficultyContext) Resolution {
	if prev == nil || prev.GameOver || prev.LevelComplete || !prev.GlitchesActive {
		return Resolution{State: prev, Outcome: OutcomeIgnored}
	}
	next := prev.Clone()
	next.Ticks++
	events := moveGlitches(next, rng, d)
	return settle(prev, next, OutcomeTick, events)
}

// ActivateGlitches ends the grace period
func ActivateGlitches(prev *GameState) Resolution {
	if prev == nil || prev.GameOver || prev.LevelComplete || prev.GlitchesActive {
		return Resolution{State: prev, Outcome: OutcomeIgnored}
	}
	next := prev.Clone()
	next.GlitchesActive = true
	next.Message = "The glitches are awake!"
	return Resolution{
		State:   next,
		Outcome: OutcomeTick,
		Events: []Event{{
			Type:    EventGlitchesActive,
			Message: next.Message,
			Score:   next.Score,
			Lives:   next.Lives,
		}},
	}
}

// settle runs the shared tail of a move or tick: win detection, then endgame collision.
func settle(prev, next *GameState, outcome Outcome, events []Event) Resolution {
	before := prev.RemainingMatching()
	after := next.RemainingMatching()

	if before > 0 && after == 0 && next.TotalNumbers > 0 && !next.LevelComplete {
		next.LevelComplete = true
		events = append(events, Event{
			Type:     EventLevelComplete,
			Message:  fmt.Sprintf("Level %d complete!", next.Level),
			Position: next.PlayerPos,
			Score:    next.Score,
			Lives:    next.Lives,
		})
	}

	// Contact only counts while the glitches are chasing. A catch on the clearing
	// move still costs the life, and on the last life it ends the game.
	if next.GlitchesActive && next.EnemyAt(next.PlayerPos) && after <= EndgameThreshold {
		next.Lives--
		hit := next.PlayerPos
		events = append(events, Event{
			Type:     EventLifeLost,
			Message:  "Caught by a glitch! Lost a life!",
			Position: hit,
			Score:    next.Score,
			Lives:    next.Lives,
		})
		if next.Lives <= 0 {
			return terminal(prev, OutcomeEnemyCollision, events)
		}
		next.PlayerPos = next.PlayerStart
		outcome = OutcomeEnemyCollision
	}

	if len(events) > 0 {
		next.Message = events[len(events)-1].Message
	} else if outcome == OutcomePlainMove {
		next.Message = ""
	}
	return Resolution{State: next, Outcome: outcome, Events: events}
}

// terminal ends the game. The board and score stay as they were before the fatal action.
func terminal(prev *GameState, outcome Outcome, events []Event) Resolution {
	final := prev.Clone()
	final.Lives = 0
	final.GameOver = true
	final.Message = fmt.Sprintf("Game over! Final score: %d", prev.Score)
	events = append(events, Event{
		Type:     EventGameOver,
		Message:  final.Message,
		Position: prev.PlayerPos,
		Score:    prev.Score,
		Lives:    0,
	})
	return Resolution{State: final, Outcome: outcome, Events: events}
}

func directionBetween(from, to Position) Direction {
	switch {
	case to.X > from.X:
		return Right
	case to.X < from.X:
		return Left
	case to.Y < from.Y:
		return Up
	}
	return Down
}
