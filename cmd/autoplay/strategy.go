package main

import (
	"github.com/wricardo/numdash/game/engine"
)

// GreedyStrategy walks to the nearest matching cell by breadth-first search.
// It steps around wrong numbers and glitches when a clean path exists.
type GreedyStrategy struct {
	visitedCells map[engine.Position]int
}

// NewGreedyStrategy creates a strategy with an empty visit history
func NewGreedyStrategy() *GreedyStrategy {
	return &GreedyStrategy{visitedCells: make(map[engine.Position]int)}
}

// NextMove returns the direction to take next, or "" when the player is boxed in
func (s *GreedyStrategy) NextMove(state *engine.GameState) string {
	if state == nil {
		return ""
	}
	s.visitedCells[state.PlayerPos]++

	// First pass avoids wrong numbers, second accepts losing a life
	for _, strict := range []bool{true, false} {
		path := s.BFS(state, func(p engine.Position) bool { return s.isValidPosition(p, state, strict) })
		if len(path) > 0 {
			return string(path[0])
		}
	}

	return s.exploreMove(state)
}

// BFS returns the shortest path from the player to the nearest matching cell
// through cells passable reports true for. nil means no such path.
func (s *GreedyStrategy) BFS(state *engine.GameState, passable func(engine.Position) bool) []engine.Direction {
	type QueueItem struct {
		pos  engine.Position
		path []engine.Direction
	}

	start := state.PlayerPos
	queue := []QueueItem{{pos: start, path: []engine.Direction{}}}
	visited := map[engine.Position]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions {
			next := current.pos.Step(dir)
			if visited[next] || !engine.InBounds(next, state.GridSize) {
				continue
			}

			newPath := append([]engine.Direction{}, current.path...)
			newPath = append(newPath, dir)

			if cell, ok := state.NumberAt(next); ok && state.Rule.Matches(cell.Value) && !state.EnemyAt(next) {
				return newPath
			}
			if !passable(next) {
				continue
			}

			visited[next] = true
			queue = append(queue, QueueItem{pos: next, path: newPath})
		}
	}

	return nil
}

// isValidPosition reports whether the strategy is willing to cross p.
// strict also rejects wrong numbers and cells next to an awake glitch.
func (s *GreedyStrategy) isValidPosition(p engine.Position, state *engine.GameState, strict bool) bool {
	if !state.IsPassable(p) || state.EnemyAt(p) {
		return false
	}
	if !strict {
		return true
	}
	if cell, ok := state.NumberAt(p); ok && !state.Rule.Matches(cell.Value) {
		return false
	}
	if state.GlitchesActive {
		for _, e := range state.EnemyPositions {
			if engine.IsAdjacent(p, e) {
				return false
			}
		}
	}
	return true
}

// exploreMove picks the least visited safe neighbor
func (s *GreedyStrategy) exploreMove(state *engine.GameState) string {
	best := ""
	bestScore := -1
	for _, dir := range engine.Directions {
		next := state.PlayerPos.Step(dir)
		if !state.IsPassable(next) || state.EnemyAt(next) {
			continue
		}
		if score := s.visitedCells[next]; bestScore == -1 || score < bestScore {
			best, bestScore = string(dir), score
		}
	}
	return best
}

// Reset clears the visit history, typically at a level change
func (s *GreedyStrategy) Reset() {
	s.visitedCells = make(map[engine.Position]int)
}
