package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// InBounds reports whether p lies on an size x size grid
func InBounds(p Position, size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// IsAdjacent reports whether two cells share an edge
func IsAdjacent(a, b Position) bool {
	return ManhattanDistance(a, b) == 1
}

// Neighbors returns the in-bounds cardinal neighbours of p in Directions order
func Neighbors(p Position, size int) []Position {
	out := make([]Position, 0, 4)
	for _, d := range Directions {
		n := p.Step(d)
		if InBounds(n, size) {
			out = append(out, n)
		}
	}
	return out
}

// Surrounding returns the in-bounds cells of the 8-neighbourhood around p
func Surrounding(p Position, size int) []Position {
	offsets := []struct{ dx, dy int }{
		{0, -1},  // North
		{1, -1},  // North-East
		{1, 0},   // East
		{1, 1},   // South-East
		{0, 1},   // South
		{-1, 1},  // South-West
		{-1, 0},  // West
		{-1, -1}, // North-West
	}

	out := make([]Position, 0, 8)
	for _, o := range offsets {
		n := Position{X: p.X + o.dx, Y: p.Y + o.dy}
		if InBounds(n, size) {
			out = append(out, n)
		}
	}
	return out
}

// containsPosition reports whether list holds p
func containsPosition(list []Position, p Position) bool {
	return indexOfPosition(list, p) != -1
}

func indexOfPosition(list []Position, p Position) int {
	for i, q := range list {
		if q.Equal(p) {
			return i
		}
	}
	return -1
}

// numberIndex returns the index of the number cell at p, or -1
func numberIndex(cells []NumberCell, p Position) int {
	for i, c := range cells {
		if c.Position.Equal(p) {
			return i
		}
	}
	return -1
}

// IsWall reports whether the cell is a wall in the current state
func (gs *GameState) IsWall(p Position) bool {
	return containsPosition(gs.Walls, p)
}

// IsPassable reports whether a cell is in bounds and not a wall
func (gs *GameState) IsPassable(p Position) bool {
	return InBounds(p, gs.GridSize) && !gs.IsWall(p)
}

// EnemyAt reports whether any glitch occupies p
func (gs *GameState) EnemyAt(p Position) bool {
	return containsPosition(gs.EnemyPositions, p)
}

// NumberAt returns the number cell at p if there is one
func (gs *GameState) NumberAt(p Position) (NumberCell, bool) {
	if i := numberIndex(gs.RemainingNumbers, p); i != -1 {
		return gs.RemainingNumbers[i], true
	}
	return NumberCell{}, false
}

// RemainingMatching counts the remaining cells that satisfy the active rule
func (gs *GameState) RemainingMatching() int {
	return CountMatching(gs.RemainingNumbers, gs.Rule)
}

// CountMatching counts the cells whose value satisfies the rule
func CountMatching(cells []NumberCell, rule Rule) int {
	count := 0
	for _, c := range cells {
		if rule.Matches(c.Value) {
			count++
		}
	}
	return count
}

// FindNearestMatching finds the closest matching number and returns its position and distance
func FindNearestMatching(state *GameState) (Position, int, bool) {
	minDistance := -1
	var nearest Position
	for _, c := range state.RemainingNumbers {
		if !state.Rule.Matches(c.Value) {
			continue
		}
		d := ManhattanDistance(state.PlayerPos, c.Position)
		if minDistance == -1 || d < minDistance {
			minDistance = d
			nearest = c.Position
		}
	}
	return nearest, minDistance, minDistance != -1
}

// ReachableFrom counts the passable cells reachable from start, treating blocked as walls
func ReachableFrom(start Position, size int, blocked func(Position) bool) int {
	if !InBounds(start, size) || blocked(start) {
		return 0
	}
	seen := map[Position]bool{start: true}
	queue := []Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range Neighbors(current, size) {
			if seen[n] || blocked(n) {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return len(seen)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
