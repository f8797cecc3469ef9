package engine

import "strings"

const (
	// Validation constants
	MinGridSize     = 4
	MaxGridSize     = 12
	MinEnemies      = 1
	MaxEnemies      = 3
	MaxWallDensity  = 0.3
	MaxLives        = 3
	PointsPerNumber = 10

	// ConsumeChance is the probability that a glitch landing on a number removes it.
	ConsumeChance = 0.8

	// EndgameThreshold is the number of matching cells at or below which glitches chase.
	EndgameThreshold = 1
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Equal reports whether two positions refer to the same cell
func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// Step returns the neighbouring position in the given direction
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Direction is one of the four cardinal directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists the cardinal directions in a fixed order
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the x,y offset for a direction
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// ParseDirection converts user input into a Direction, ignoring case
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Up, Down, Left, Right:
		return d, true
	}
	return "", false
}

// NumberCell is a value placed on the board
type NumberCell struct {
	Position Position   `json:"position"`
	Value    Expression `json:"value"`
}

// Board is a fully generated level layout
type Board struct {
	Size        int          `json:"size"`
	Walls       []Position   `json:"walls"`
	Numbers     []NumberCell `json:"numbers"`
	EnemyStarts []Position   `json:"enemy_starts"`
	PlayerStart Position     `json:"player_start"`
}

// GameState represents the complete state of one level in play
type GameState struct {
	GridSize         int          `json:"grid_size"`
	Score            int          `json:"score"`
	Lives            int          `json:"lives"`
	Level            int          `json:"level"`
	PlayerPos        Position     `json:"player_pos"`
	PlayerStart      Position     `json:"player_start"`
	PlayerFacing     Direction    `json:"player_facing"`
	EnemyPositions   []Position   `json:"enemy_positions"`
	EnemyFacing      []Direction  `json:"enemy_facing"`
	RemainingNumbers []NumberCell `json:"remaining_numbers"`
	Walls            []Position   `json:"walls"`
	Rule             Rule         `json:"rule"`

	// TotalNumbers is the number of cells that held a value when the level started.
	TotalNumbers   int    `json:"total_numbers"`
	GlitchesActive bool   `json:"glitches_active"`
	LevelComplete  bool   `json:"level_complete"`
	GameOver       bool   `json:"game_over"`
	Message        string `json:"message"`
	TotalMoves     int    `json:"total_moves"`
	Ticks          int    `json:"ticks"`
}

// Clone returns a deep copy so callers never share slices with a committed state
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	next := *gs
	next.EnemyPositions = append([]Position(nil), gs.EnemyPositions...)
	next.EnemyFacing = append([]Direction(nil), gs.EnemyFacing...)
	next.Walls = append([]Position(nil), gs.Walls...)
	next.RemainingNumbers = make([]NumberCell, len(gs.RemainingNumbers))
	for i, n := range gs.RemainingNumbers {
		next.RemainingNumbers[i] = NumberCell{Position: n.Position, Value: n.Value.clone()}
	}
	return &next
}

// EventType classifies what happened during a transition
type EventType string

const (
	EventScore          EventType = "score"
	EventLifeLost       EventType = "life_lost"
	EventLevelComplete  EventType = "level_complete"
	EventGameOver       EventType = "game_over"
	EventNumberConsumed EventType = "number_consumed"
	EventGlitchesActive EventType = "glitches_active"
)

// Event is emitted by the resolver for the hosting shell
type Event struct {
	Type       EventType `json:"type"`
	Message    string    `json:"message"`
	Position   Position  `json:"position"`
	ScoreDelta int       `json:"score_delta,omitempty"`
	Score      int       `json:"score"`
	Lives      int       `json:"lives"`
}

// Outcome is the classification of a resolved player move
type Outcome string

const (
	OutcomeIgnored        Outcome = "ignored"
	OutcomeBlocked        Outcome = "blocked"
	OutcomeCollectCorrect Outcome = "collect_correct"
	OutcomeCollectWrong   Outcome = "collect_wrong"
	OutcomeEnemyCollision Outcome = "enemy_collision"
	OutcomePlainMove      Outcome = "plain_move"
	OutcomeTick           Outcome = "tick"
)

// Resolution is the result of applying one action to a state
type Resolution struct {
	State   *GameState `json:"state"`
	Outcome Outcome    `json:"outcome"`
	Events  []Event    `json:"events,omitempty"`
}

// HasEvent reports whether the resolution emitted an event of the given type
func (r Resolution) HasEvent(t EventType) bool {
	for _, e := range r.Events {
		if e.Type == t {
			return true
		}
	}
	return false
}
