package engine

import (
	"math"
	"math/rand"
)

const (
	MinMatchingCells       = 5
	MatchingCellRatio      = 0.3
	DefaultNeighborRetries = 20
)

// GeneratorConfig controls procedural board generation
type GeneratorConfig struct {
	GridSize       int
	Rule           Rule
	UseExpressions bool
	WallDensity    float64
	EnemyCount     int

	// FixedStart places the player in the bottom-right corner instead of a random cell.
	FixedStart bool
	// WallCluster adds a small L-shaped wall cluster near the centre.
	WallCluster bool

	// NeighborRetries bounds re-rolls that avoid equal displays in adjacent cells (0 = default).
	NeighborRetries int
}

// MinMatchCount returns the number of matching cells a board with freeCells must carry
func MinMatchCount(freeCells int) int {
	n := int(math.Round(float64(freeCells) * MatchingCellRatio))
	if n < MinMatchingCells {
		n = MinMatchingCells
	}
	if n > freeCells {
		n = freeCells
	}
	return n
}

// GenerateBoard creates a fully populated board. It never fails: grid sizes below
// MinGridSize are raised, counts that do not fit are clamped.
func GenerateBoard(cfg GeneratorConfig, rng *rand.Rand) *Board {
	size := cfg.GridSize
	if size < MinGridSize {
		size = MinGridSize
	}
	retries := cfg.NeighborRetries
	if retries <= 0 {
		retries = DefaultNeighborRetries
	}

	occupied := make(map[Position]bool)
	board := &Board{Size: size}

	// 1. Player start
	if cfg.FixedStart {
		board.PlayerStart = Position{X: size - 1, Y: size - 1}
	} else {
		board.PlayerStart = Position{X: rng.Intn(size), Y: rng.Intn(size)}
	}
	occupied[board.PlayerStart] = true

	// 2. Walls
	walls := make(map[Position]bool)
	blocked := func(p Position) bool { return walls[p] }
	tryWall := func(p Position) bool {
		if occupied[p] || walls[p] || !InBounds(p, size) {
			return false
		}
		walls[p] = true
		// Every remaining open cell must stay reachable from the player start.
		open := size*size - len(walls)
		if ReachableFrom(board.PlayerStart, size, blocked) != open {
			delete(walls, p)
			return false
		}
		board.Walls = append(board.Walls, p)
		return true
	}

	if cfg.WallCluster {
		c := size / 2
		for _, p := range []Position{{X: c - 1, Y: c - 1}, {X: c - 1, Y: c}, {X: c, Y: c}} {
			tryWall(p)
		}
	}

	density := cfg.WallDensity
	if density < 0 {
		density = 0
	}
	if density > MaxWallDensity {
		density = MaxWallDensity
	}
	wallTarget := int(density * float64(size*size))
	interior := interiorCells(size)
	rng.Shuffle(len(interior), func(i, j int) { interior[i], interior[j] = interior[j], interior[i] })
	for _, p := range interior {
		if len(board.Walls) >= wallTarget {
			break
		}
		tryWall(p)
	}
	for _, p := range board.Walls {
		occupied[p] = true
	}

	// 3. Enemy starts, preferring cells not adjacent to the player
	enemies := cfg.EnemyCount
	if enemies < 0 {
		enemies = 0
	}
	if enemies > MaxEnemies {
		enemies = MaxEnemies
	}
	candidates := freeCells(size, occupied)
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	for pass := 0; pass < 2 && len(board.EnemyStarts) < enemies; pass++ {
		for _, p := range candidates {
			if len(board.EnemyStarts) >= enemies {
				break
			}
			if occupied[p] {
				continue
			}
			if pass == 0 && ManhattanDistance(p, board.PlayerStart) < 2 {
				continue
			}
			board.EnemyStarts = append(board.EnemyStarts, p)
			occupied[p] = true
		}
	}

	// 4. Matching cells
	free := freeCells(size, occupied)
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	minMatch := MinMatchCount(len(free))

	displays := make(map[Position]string, len(free))
	for _, p := range free[:minMatch] {
		v := cfg.Rule.MatchingValue(rng, cfg.UseExpressions)
		board.Numbers = append(board.Numbers, NumberCell{Position: p, Value: v})
		displays[p] = v.Display
	}

	// 5. Non-matching cells, re-rolled to avoid equal displays in the 8-neighbourhood
	for _, p := range free[minMatch:] {
		var best Expression
		bestClashes := -1
		for attempt := 0; attempt < retries; attempt++ {
			v := cfg.Rule.NonMatchingValue(rng, cfg.UseExpressions)
			clashes := duplicateNeighbors(p, v.Display, displays, size)
			if bestClashes == -1 || clashes < bestClashes {
				best, bestClashes = v, clashes
			}
			if clashes == 0 {
				break
			}
		}
		board.Numbers = append(board.Numbers, NumberCell{Position: p, Value: best})
		displays[p] = best.Display
	}

	return board
}

// FreeCellCount returns the number of cells that hold a value on the board
func (b *Board) FreeCellCount() int {
	return len(b.Numbers)
}

// MatchingCount counts the board cells that satisfy rule
func (b *Board) MatchingCount(rule Rule) int {
	return CountMatching(b.Numbers, rule)
}

func interiorCells(size int) []Position {
	var out []Position
	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			out = append(out, Position{X: x, Y: y})
		}
	}
	return out
}

func freeCells(size int, occupied map[Position]bool) []Position {
	var out []Position
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			p := Position{X: x, Y: y}
			if !occupied[p] {
				out = append(out, p)
			}
		}
	}
	return out
}

func duplicateNeighbors(p Position, display string, displays map[Position]string, size int) int {
	count := 0
	for _, n := range Surrounding(p, size) {
		if d, ok := displays[n]; ok && d == display {
			count++
		}
	}
	return count
}
