package engine

import (
	"fmt"
	"math"
	"math/rand"
)

// MaxTier is the highest difficulty tier
const MaxTier = 3

// Per-tier glitch behaviour. Index is the tier.
var (
	wanderPause = [MaxTier + 1]float64{0.5, 0.4, 0.3, 0.2}
	chasePause  = [MaxTier + 1]float64{0.3, 0.23, 0.17, 0.1}
	pathChance  = [MaxTier + 1]float64{0.2, 0.45, 0.65, 0.85}
)

// DifficultyContext carries the difficulty inputs for AI selection and generation.
// It is passed explicitly; nothing reads difficulty from global state.
type DifficultyContext struct {
	Level      int     `json:"level"`
	Tier       int     `json:"tier"`
	Multiplier float64 `json:"multiplier"`
}

// NewDifficultyContext derives the tier from the level number and challenge multiplier
func NewDifficultyContext(level int, multiplier float64) DifficultyContext {
	if level < 1 {
		level = 1
	}
	if multiplier < 1 {
		multiplier = 1
	}
	// Every two challenge cycles raise the tier by one.
	cycles := int(math.Round((multiplier - 1) / ChallengeStep))
	tier := (level-1)/2 + cycles/2
	return DifficultyContext{Level: level, Tier: clampTier(tier), Multiplier: multiplier}
}

// WithTier overrides the derived tier, as level configs may pin one
func (d DifficultyContext) WithTier(tier int) DifficultyContext {
	d.Tier = clampTier(tier)
	return d
}

// WanderPause is the probability that a wandering glitch stays put this tick
func (d DifficultyContext) WanderPause() float64 { return wanderPause[clampTier(d.Tier)] }

// ChasePause is the probability that a chasing glitch stays put this tick
func (d DifficultyContext) ChasePause() float64 { return chasePause[clampTier(d.Tier)] }

// PathChance is the probability that a chasing glitch uses shortest-path search over greedy chase
func (d DifficultyContext) PathChance() float64 { return pathChance[clampTier(d.Tier)] }

func clampTier(t int) int {
	if t < 0 {
		return 0
	}
	if t > MaxTier {
		return MaxTier
	}
	return t
}

// GlitchMode is the policy a glitch moved with on one tick
type GlitchMode string

const (
	ModeStay   GlitchMode = "stay"
	ModeWander GlitchMode = "wander"
	ModeGreedy GlitchMode = "greedy"
	ModePath   GlitchMode = "path"
)

// glitchBlocked reports whether glitch idx may not enter p
func glitchBlocked(state *GameState, idx int, p Position) bool {
	if !state.IsPassable(p) {
		return true
	}
	for i, e := range state.EnemyPositions {
		if i != idx && e.Equal(p) {
			return true
		}
	}
	return false
}

// WanderStep tries the four directions in random order and returns the first open cell
func WanderStep(state *GameState, idx int, rng *rand.Rand) Position {
	from := state.EnemyPositions[idx]
	dirs := append([]Direction(nil), Directions...)
	rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	for _, d := range dirs {
		next := from.Step(d)
		if !glitchBlocked(state, idx, next) {
			return next
		}
	}
	return from
}

// GreedyStep closes the larger axis gap to the player first, then the other axis.
// On a tie the y gap goes first.
func GreedyStep(state *GameState, idx int) Position {
	from := state.EnemyPositions[idx]
	dx := state.PlayerPos.X - from.X
	dy := state.PlayerPos.Y - from.Y

	xStep := Position{X: from.X + sign(dx), Y: from.Y}
	yStep := Position{X: from.X, Y: from.Y + sign(dy)}

	var candidates []Position
	if abs(dx) > abs(dy) {
		if dx != 0 {
			candidates = append(candidates, xStep)
		}
		if dy != 0 {
			candidates = append(candidates, yStep)
		}
	} else {
		if dy != 0 {
			candidates = append(candidates, yStep)
		}
		if dx != 0 {
			candidates = append(candidates, xStep)
		}
	}

	for _, c := range candidates {
		if !glitchBlocked(state, idx, c) {
			return c
		}
	}
	return from
}

// ShortestPath runs a breadth-first search over non-wall cells and returns the path
// from start to goal, both inclusive. ok is false when the goal is unreachable.
func ShortestPath(state *GameState, start, goal Position) ([]Position, bool) {
	if start.Equal(goal) {
		return []Position{start}, true
	}
	if !state.IsPassable(goal) {
		return nil, false
	}

	parent := map[Position]Position{}
	seen := map[Position]bool{start: true}
	queue := []Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, n := range Neighbors(current, state.GridSize) {
			if seen[n] || state.IsWall(n) {
				continue
			}
			seen[n] = true
			parent[n] = current
			if n.Equal(goal) {
				return buildPath(parent, start, goal), true
			}
			queue = append(queue, n)
		}
	}
	return nil, false
}

func buildPath(parent map[Position]Position, start, goal Position) []Position {
	path := []Position{goal}
	for cur := goal; !cur.Equal(start); {
		cur = parent[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathStep returns the first step of the shortest path to the player, falling back to greedy chase
func PathStep(state *GameState, idx int) Position {
	from := state.EnemyPositions[idx]
	path, ok := ShortestPath(state, from, state.PlayerPos)
	if !ok || len(path) < 2 {
		return GreedyStep(state, idx)
	}
	if glitchBlocked(state, idx, path[1]) {
		return GreedyStep(state, idx)
	}
	return path[1]
}

// ChooseGlitchMode selects the policy for one glitch on this tick
func ChooseGlitchMode(remainingMatching int, d DifficultyContext, rng *rand.Rand) GlitchMode {
	if remainingMatching > EndgameThreshold {
		if rng.Float64() < d.WanderPause() {
			return ModeStay
		}
		return ModeWander
	}
	if rng.Float64() < d.ChasePause() {
		return ModeStay
	}
	if rng.Float64() < d.PathChance() {
		return ModePath
	}
	return ModeGreedy
}

// moveGlitches advances every glitch by at most one cell on next, which the caller owns.
// Glitches landing on a number may consume it.
func moveGlitches(next *GameState, rng *rand.Rand, d DifficultyContext) []Event {
	var events []Event
	for len(next.EnemyFacing) < len(next.EnemyPositions) {
		next.EnemyFacing = append(next.EnemyFacing, Left)
	}

	for i := range next.EnemyPositions {
		from := next.EnemyPositions[i]
		var dest Position
		switch ChooseGlitchMode(next.RemainingMatching(), d, rng) {
		case ModeWander:
			dest = WanderStep(next, i, rng)
		case ModeGreedy:
			dest = GreedyStep(next, i)
		case ModePath:
			dest = PathStep(next, i)
		default:
			dest = from
		}
		if dest.Equal(from) {
			continue
		}

		next.EnemyPositions[i] = dest
		if dx := dest.X - from.X; dx > 0 {
			next.EnemyFacing[i] = Right
		} else if dx < 0 {
			next.EnemyFacing[i] = Left
		}

		if idx := numberIndex(next.RemainingNumbers, dest); idx != -1 && rng.Float64() < ConsumeChance {
			cell := next.RemainingNumbers[idx]
			next.RemainingNumbers = append(next.RemainingNumbers[:idx], next.RemainingNumbers[idx+1:]...)
			events = append(events, Event{
				Type:     EventNumberConsumed,
				Message:  fmt.Sprintf("A glitch consumed %s", cell.Value.Display),
				Position: dest,
				Score:    next.Score,
				Lives:    next.Lives,
			})
		}
	}
	return events
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
