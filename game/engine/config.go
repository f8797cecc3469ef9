package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGlitchIntervalMs = 1000
	DefaultGracePeriodMs    = 5000
	DefaultChallengeCap     = 50

	// ChallengeStep is the multiplier increase per completed pass over the catalogue.
	ChallengeStep = 0.2
)

// Messages holds the player-facing texts of a catalogue
type Messages struct {
	Welcome       string `json:"welcome" yaml:"welcome"`
	LevelComplete string `json:"level_complete" yaml:"level_complete"`
	GameOver      string `json:"game_over" yaml:"game_over"`
	Correct       string `json:"correct,omitempty" yaml:"correct,omitempty"`
	Wrong         string `json:"wrong,omitempty" yaml:"wrong,omitempty"`
	Caught        string `json:"caught,omitempty" yaml:"caught,omitempty"`
	GlitchesAwake string `json:"glitches_awake,omitempty" yaml:"glitches_awake,omitempty"`
	Victory       string `json:"victory,omitempty" yaml:"victory,omitempty"`
}

// LevelConfig describes one level of a catalogue
type LevelConfig struct {
	ID               int      `json:"id" yaml:"id"`
	Name             string   `json:"name,omitempty" yaml:"name,omitempty"`
	Rule             RuleKind `json:"rule" yaml:"rule"`
	Target           int      `json:"target,omitempty" yaml:"target,omitempty"` // 0 = generated per level
	GridSize         int      `json:"grid_size" yaml:"grid_size"`
	EnemyCount       int      `json:"enemy_count" yaml:"enemy_count"`
	WallDensity      float64  `json:"wall_density" yaml:"wall_density"`
	UseExpressions   bool     `json:"use_expressions,omitempty" yaml:"use_expressions,omitempty"`
	FixedStart       bool     `json:"fixed_start,omitempty" yaml:"fixed_start,omitempty"`
	WallCluster      bool     `json:"wall_cluster,omitempty" yaml:"wall_cluster,omitempty"`
	GlitchIntervalMs int      `json:"glitch_interval_ms,omitempty" yaml:"glitch_interval_ms,omitempty"`
	Tier             *int     `json:"tier,omitempty" yaml:"tier,omitempty"`
}

// GameConfig is a level catalogue
type GameConfig struct {
	Name          string        `json:"name" yaml:"name"`
	Description   string        `json:"description" yaml:"description"`
	Lives         int           `json:"lives" yaml:"lives"`
	GracePeriodMs int           `json:"grace_period_ms" yaml:"grace_period_ms"`
	ChallengeCap  int           `json:"challenge_cap" yaml:"challenge_cap"`
	Levels        []LevelConfig `json:"levels" yaml:"levels"`
	Messages      Messages      `json:"messages" yaml:"messages"`
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Lives < 1 || config.Lives > MaxLives {
		return fmt.Errorf("config validation: lives must be between 1 and %d, got %d", MaxLives, config.Lives)
	}
	if config.GracePeriodMs < 0 {
		return fmt.Errorf("config validation: grace_period_ms must not be negative, got %d", config.GracePeriodMs)
	}
	if config.ChallengeCap < 0 {
		return fmt.Errorf("config validation: challenge_cap must not be negative, got %d", config.ChallengeCap)
	}

	if len(config.Levels) == 0 {
		return fmt.Errorf("config validation: at least one level is required")
	}
	for i, level := range config.Levels {
		if err := validateLevel(level); err != nil {
			return fmt.Errorf("config validation: level %d: %w", i+1, err)
		}
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for score")
	}
	if !strings.Contains(config.Messages.LevelComplete, "%d") {
		return fmt.Errorf("config validation: messages.level_complete must contain %%d for level")
	}

	return nil
}

func validateLevel(level LevelConfig) error {
	if !level.Rule.Valid() {
		return fmt.Errorf("unknown rule %q", level.Rule)
	}
	if !level.Rule.NeedsTarget() && level.Target != 0 {
		return fmt.Errorf("rule %s takes no target, got %d", level.Rule, level.Target)
	}
	if level.Target < 0 && level.Rule == RuleFactorsOf {
		return fmt.Errorf("rule %s needs a positive target, got %d", level.Rule, level.Target)
	}
	if level.GridSize < MinGridSize || level.GridSize > MaxGridSize {
		return fmt.Errorf("grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, level.GridSize)
	}
	if level.EnemyCount < MinEnemies || level.EnemyCount > MaxEnemies {
		return fmt.Errorf("enemy_count must be between %d and %d, got %d", MinEnemies, MaxEnemies, level.EnemyCount)
	}
	if level.WallDensity < 0 || level.WallDensity > MaxWallDensity {
		return fmt.Errorf("wall_density must be between 0 and %.1f, got %.2f", MaxWallDensity, level.WallDensity)
	}
	if level.GlitchIntervalMs < 0 {
		return fmt.Errorf("glitch_interval_ms must not be negative, got %d", level.GlitchIntervalMs)
	}
	if level.Tier != nil && (*level.Tier < 0 || *level.Tier > MaxTier) {
		return fmt.Errorf("tier must be between 0 and %d, got %d", MaxTier, *level.Tier)
	}
	return nil
}

// ApplyDefaults fills zero-valued optional fields
func (c *GameConfig) ApplyDefaults() {
	def := DefaultGameConfig()
	if c.Lives == 0 {
		c.Lives = MaxLives
	}
	if c.GracePeriodMs == 0 {
		c.GracePeriodMs = DefaultGracePeriodMs
	}
	if c.ChallengeCap == 0 {
		c.ChallengeCap = DefaultChallengeCap
	}
	if c.Messages.Welcome == "" {
		c.Messages.Welcome = def.Messages.Welcome
	}
	if c.Messages.LevelComplete == "" {
		c.Messages.LevelComplete = def.Messages.LevelComplete
	}
	if c.Messages.GameOver == "" {
		c.Messages.GameOver = def.Messages.GameOver
	}
	for i := range c.Levels {
		if c.Levels[i].ID == 0 {
			c.Levels[i].ID = i + 1
		}
	}
}

// ParseGameConfig decodes a catalogue from JSON or YAML, chosen by file extension
func ParseGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	config.ApplyDefaults()
	return &config, nil
}

// MarshalGameConfig encodes a catalogue as JSON or YAML, chosen by file extension
func MarshalGameConfig(filename string, config *GameConfig) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return yaml.Marshal(config)
	}
	return json.MarshalIndent(config, "", "  ")
}

// LoadGameConfig loads a game configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(configPath, data)
	if err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func tier(t int) *int { return &t }

// DefaultGameConfig returns the built-in catalogue, one level per rule kind
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:          "Num Dash",
		Description:   "Collect the numbers that match each level's rule while dodging the glitches",
		Lives:         MaxLives,
		GracePeriodMs: DefaultGracePeriodMs,
		ChallengeCap:  DefaultChallengeCap,
		Levels: []LevelConfig{
			{ID: 1, Rule: RuleEven, GridSize: 6, EnemyCount: 1, WallDensity: 0.05, FixedStart: true, GlitchIntervalMs: 1000},
			{ID: 2, Rule: RuleOdd, GridSize: 6, EnemyCount: 1, WallDensity: 0.1, FixedStart: true, GlitchIntervalMs: 850},
			{ID: 3, Rule: RulePrime, GridSize: 7, EnemyCount: 2, WallDensity: 0.1, GlitchIntervalMs: 700},
			{ID: 4, Rule: RuleAdditionsOf, GridSize: 7, EnemyCount: 2, WallDensity: 0.1, UseExpressions: true, GlitchIntervalMs: 650},
			{ID: 5, Rule: RuleSubtractionsOf, GridSize: 8, EnemyCount: 2, WallDensity: 0.12, UseExpressions: true, WallCluster: true, GlitchIntervalMs: 600},
			{ID: 6, Rule: RuleMultiplesOf, GridSize: 8, EnemyCount: 2, WallDensity: 0.12, UseExpressions: true, WallCluster: true, GlitchIntervalMs: 550},
			{ID: 7, Rule: RuleFactorsOf, GridSize: 9, EnemyCount: 3, WallDensity: 0.15, WallCluster: true, GlitchIntervalMs: 500},
			{ID: 8, Rule: RuleEqualsTarget, GridSize: 9, EnemyCount: 3, WallDensity: 0.15, UseExpressions: true, WallCluster: true, GlitchIntervalMs: 500},
			{ID: 9, Rule: RuleGreaterThan, Target: 50, GridSize: 10, EnemyCount: 3, WallDensity: 0.15, WallCluster: true, GlitchIntervalMs: 450},
			{ID: 10, Rule: RuleLessThan, Target: 50, GridSize: 10, EnemyCount: 3, WallDensity: 0.15, WallCluster: true, GlitchIntervalMs: 450, Tier: tier(MaxTier)},
		},
		Messages: Messages{
			Welcome:       "Welcome to Num Dash! Collect the numbers that match the rule.",
			LevelComplete: "Level %d complete!",
			GameOver:      "Game over! Final score: %d",
			Correct:       "Correct! +10 points",
			Wrong:         "Wrong number! Lost a life!",
			Caught:        "Caught by a glitch! Lost a life!",
			GlitchesAwake: "The glitches are awake!",
			Victory:       "You cleared every level! Final score: %d",
		},
	}
}

// LevelPlan is a catalogue level resolved for a level number, with challenge scaling applied
type LevelPlan struct {
	Number         int               `json:"number"`
	Level          LevelConfig       `json:"level"`
	Cycle          int               `json:"cycle"`
	GridSize       int               `json:"grid_size"`
	EnemyCount     int               `json:"enemy_count"`
	GlitchInterval time.Duration     `json:"glitch_interval"`
	Difficulty     DifficultyContext `json:"difficulty"`
}

// PlanLevel resolves level number n (1-based). Normal mode stops after the last level;
// challenge mode cycles the catalogue until the challenge cap.
func (c *GameConfig) PlanLevel(n int, challenge bool) (LevelPlan, bool) {
	if n < 1 || len(c.Levels) == 0 {
		return LevelPlan{}, false
	}
	if !challenge && n > len(c.Levels) {
		return LevelPlan{}, false
	}
	if challenge && c.ChallengeCap > 0 && n > c.ChallengeCap {
		return LevelPlan{}, false
	}

	idx := (n - 1) % len(c.Levels)
	cycle := (n - 1) / len(c.Levels)
	level := c.Levels[idx]
	multiplier := 1 + ChallengeStep*float64(cycle)

	grid := level.GridSize + cycle
	if grid > MaxGridSize {
		grid = MaxGridSize
	}
	enemies := level.EnemyCount + cycle
	if enemies > MaxEnemies {
		enemies = MaxEnemies
	}
	intervalMs := level.GlitchIntervalMs
	if intervalMs <= 0 {
		intervalMs = DefaultGlitchIntervalMs
	}
	interval := time.Duration(float64(intervalMs)/multiplier) * time.Millisecond

	difficulty := NewDifficultyContext(n, multiplier)
	if level.Tier != nil {
		difficulty = difficulty.WithTier(*level.Tier)
	}

	return LevelPlan{
		Number:         n,
		Level:          level,
		Cycle:          cycle,
		GridSize:       grid,
		EnemyCount:     enemies,
		GlitchInterval: interval,
		Difficulty:     difficulty,
	}, true
}

// IsFinalLevel reports whether no level follows n
func (c *GameConfig) IsFinalLevel(n int, challenge bool) bool {
	_, ok := c.PlanLevel(n+1, challenge)
	return !ok
}

// GeneratorConfig returns the generator input for the plan with rule bound
func (p LevelPlan) GeneratorConfig(rule Rule) GeneratorConfig {
	return GeneratorConfig{
		GridSize:       p.GridSize,
		Rule:           rule,
		UseExpressions: p.Level.UseExpressions,
		WallDensity:    p.Level.WallDensity,
		EnemyCount:     p.EnemyCount,
		FixedStart:     p.Level.FixedStart,
		WallCluster:    p.Level.WallCluster,
	}
}

// BuildLevel binds the rule, generates a board and returns the fresh level state
func BuildLevel(p LevelPlan, score, lives int, rng *rand.Rand) (*GameState, error) {
	rule, err := NewRule(p.Level.Rule, p.Level.Target, rng)
	if err != nil {
		return nil, err
	}
	board := GenerateBoard(p.GeneratorConfig(rule), rng)
	return NewStateFromBoard(board, rule, p.Number, score, lives), nil
}

// NewStateFromBoard creates a level-start state from a generated board
func NewStateFromBoard(board *Board, rule Rule, level, score, lives int) *GameState {
	numbers := make([]NumberCell, len(board.Numbers))
	for i, n := range board.Numbers {
		numbers[i] = NumberCell{Position: n.Position, Value: n.Value.clone()}
	}
	facing := make([]Direction, len(board.EnemyStarts))
	for i := range facing {
		facing[i] = Left
	}
	return &GameState{
		GridSize:         board.Size,
		Score:            score,
		Lives:            lives,
		Level:            level,
		PlayerPos:        board.PlayerStart,
		PlayerStart:      board.PlayerStart,
		PlayerFacing:     Right,
		EnemyPositions:   append([]Position(nil), board.EnemyStarts...),
		EnemyFacing:      facing,
		RemainingNumbers: numbers,
		Walls:            append([]Position(nil), board.Walls...),
		Rule:             rule,
		TotalNumbers:     len(numbers),
	}
}
