package engine

import (
	"fmt"
	"math/rand"
)

// Engine provides the main interface for game operations on one level
type Engine interface {
	// Game state management
	GetState() *GameState
	IsGameOver() bool
	IsLevelComplete() bool
	GetScore() int
	GetLives() int
	GetPlayerPosition() Position
	RemainingMatching() int

	// Movement operations
	Move(direction Direction) Resolution
	MoveTo(dest Position) Resolution
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// Glitch operations
	Tick() Resolution
	ActivateGlitches() Resolution

	// Configuration
	GetConfig() *GameConfig
	GetPlan() LevelPlan
}

// GameEngine implements the Engine interface. It owns one level's committed state
// and is not safe for concurrent use; the session controller serializes access.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	plan   LevelPlan
	rng    *rand.Rand
}

// NewEngine builds a level from the plan and wraps it
func NewEngine(config *GameConfig, plan LevelPlan, score, lives int, rng *rand.Rand) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("engine: rng is required")
	}

	state, err := BuildLevel(plan, score, lives, rng)
	if err != nil {
		return nil, err
	}
	state.Message = config.Messages.Welcome

	return &GameEngine{
		state:  state,
		config: config,
		plan:   plan,
		rng:    rng,
	}, nil
}

// NewEngineWithState wraps an existing state, used by tests and tools that build boards by hand
func NewEngineWithState(config *GameConfig, state *GameState, rng *rand.Rand) *GameEngine {
	if config == nil {
		config = DefaultGameConfig()
	}
	plan, _ := config.PlanLevel(state.Level, false)
	plan.Difficulty = NewDifficultyContext(state.Level, 1)
	return &GameEngine{state: state, config: config, plan: plan, rng: rng}
}

// GetState returns a snapshot of the committed state
func (e *GameEngine) GetState() *GameState {
	return e.state.Clone()
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsLevelComplete returns whether every matching number has been collected
func (e *GameEngine) IsLevelComplete() bool {
	return e.state.LevelComplete
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetLives returns the remaining lives
func (e *GameEngine) GetLives() int {
	return e.state.Lives
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.PlayerPos
}

// RemainingMatching returns the count of matching numbers still on the board
func (e *GameEngine) RemainingMatching() int {
	return e.state.RemainingMatching()
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction Direction) Resolution {
	return e.apply(MoveAction(direction))
}

// MoveTo attempts to move the player onto an adjacent cell
func (e *GameEngine) MoveTo(dest Position) Resolution {
	return e.apply(MoveToAction(dest))
}

// Tick advances the glitches
func (e *GameEngine) Tick() Resolution {
	return e.apply(Action{Type: ActionTick})
}

// ActivateGlitches ends the grace period
func (e *GameEngine) ActivateGlitches() Resolution {
	return e.apply(Action{Type: ActionActivate})
}

// apply always reduces from the latest committed state and commits the result
func (e *GameEngine) apply(action Action) Resolution {
	res := Reduce(e.state, action, e.rng, e.plan.Difficulty)
	if res.State != nil && res.State != e.state {
		e.applyMessages(res)
		e.state = res.State
	}
	return res
}

// applyMessages replaces resolver texts with the catalogue's messages where configured
func (e *GameEngine) applyMessages(res Resolution) {
	if len(res.Events) == 0 {
		return
	}
	m := e.config.Messages
	last := res.Events[len(res.Events)-1]
	switch last.Type {
	case EventScore:
		if m.Correct != "" {
			res.State.Message = m.Correct
		}
	case EventLifeLost:
		if res.Outcome == OutcomeEnemyCollision && m.Caught != "" {
			res.State.Message = m.Caught
		} else if res.Outcome == OutcomeCollectWrong && m.Wrong != "" {
			res.State.Message = m.Wrong
		}
	case EventLevelComplete:
		if m.LevelComplete != "" {
			res.State.Message = fmt.Sprintf(m.LevelComplete, res.State.Level)
		}
	case EventGameOver:
		if m.GameOver != "" {
			res.State.Message = fmt.Sprintf(m.GameOver, res.State.Score)
		}
	case EventGlitchesActive:
		if m.GlitchesAwake != "" {
			res.State.Message = m.GlitchesAwake
		}
	}
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction Direction) bool {
	if e.state.GameOver || e.state.LevelComplete {
		return false
	}
	dir, ok := ParseDirection(string(direction))
	if !ok {
		return false
	}
	dest := e.state.PlayerPos.Step(dir)
	return e.state.IsPassable(dest) && !e.state.EnemyAt(dest)
}

// GetPossibleMoves returns all valid directions the player can move
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetPlan returns the resolved level plan
func (e *GameEngine) GetPlan() LevelPlan {
	return e.plan
}

// BulkMove executes multiple moves in sequence, stopping when the level ends
func (e *GameEngine) BulkMove(moves []Direction) []Resolution {
	results := make([]Resolution, 0, len(moves))
	for _, direction := range moves {
		if e.IsGameOver() || e.IsLevelComplete() {
			break
		}
		results = append(results, e.Move(direction))
	}
	return results
}
