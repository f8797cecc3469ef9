package service

import (
	"errors"
	"strings"
	"time"

	"github.com/wricardo/numdash/game/engine"
	"github.com/wricardo/numdash/game/score"
)

var (
	ErrNotPlaying           = errors.New("game is not in play")
	ErrLevelNotComplete     = errors.New("level is not complete")
	ErrGameNotOver          = errors.New("game is not over")
	ErrScoreAlreadyRecorded = errors.New("score already recorded")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrInvalidMode          = errors.New("invalid mode")
)

// Status is the session controller's state
type Status string

const (
	StatusStarting      Status = "starting"
	StatusPlaying       Status = "playing"
	StatusLevelComplete Status = "level_complete"
	StatusGameOver      Status = "game_over"
)

// Mode selects fixed-catalogue play or endless challenge play
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeChallenge Mode = "challenge"
)

// ParseMode converts a string to a Mode. An empty string is normal mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeNormal:
		return ModeNormal, true
	case ModeChallenge:
		return ModeChallenge, true
	}
	return "", false
}

// Snapshot is the read-only view of a session handed to presentation layers
type Snapshot struct {
	Status           Status   `json:"status"`
	Mode             Mode     `json:"mode"`
	PlayerName       string   `json:"player_name,omitempty"`
	Level            int      `json:"level"`
	FinalLevel       bool     `json:"final_level"`
	Score            int      `json:"score"`
	Lives            int      `json:"lives"`
	RuleID           string   `json:"rule_id"`
	RuleName         string   `json:"rule_name"`
	RuleDescription  string   `json:"rule_description"`
	Remaining        int      `json:"remaining"`
	Multiplier       float64  `json:"multiplier"`
	Tier             int      `json:"tier"`
	GlitchIntervalMs int64    `json:"glitch_interval_ms"`
	PossibleMoves    []string `json:"possible_moves"`
	Rows             []string `json:"rows"`
	Message          string   `json:"message"`
	Notice           string   `json:"notice,omitempty"`

	State *engine.GameState `json:"state"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Seq       int             `json:"seq"`
	Type      string          `json:"type"` // engine event types plus "level_started", "victory", "score_recorded", "score_failed"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position"`
	Score     int             `json:"score"`
	Lives     int             `json:"lives"`
	Level     int             `json:"level"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []GameEvent `json:"events"`
	TotalEvents int         `json:"total_events"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// MoveResult contains the result of a move or level transition
type MoveResult struct {
	Success  bool           `json:"success"`
	Outcome  engine.Outcome `json:"outcome,omitempty"`
	Status   Status         `json:"status"`
	Message  string         `json:"message"`
	Events   []GameEvent    `json:"events"`
	Snapshot *Snapshot      `json:"snapshot"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string    `json:"id"`
	ConfigName     string    `json:"config_name"`
	Mode           Mode      `json:"mode"`
	PlayerName     string    `json:"player_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Snapshot       *Snapshot `json:"snapshot"`
}

// CreateSessionOptions describes a new session
type CreateSessionOptions struct {
	ConfigName string `json:"config_name"`
	Mode       Mode   `json:"mode"`
	PlayerName string `json:"player_name"`

	// Seed fixes board generation and glitch randomness; 0 picks one from the clock.
	Seed int64 `json:"seed"`

	// ManualTick disables the glitch timer. Callers drive glitches themselves.
	ManualTick bool `json:"manual_tick"`
}

// ScoreResult is a recorded high score and its table position
type ScoreResult struct {
	Entry score.Entry `json:"entry"`
	Rank  int         `json:"rank"`
}

// ConfigInfo provides information about a level catalogue
type ConfigInfo struct {
	Filename    string   `json:"filename"`
	ConfigID    string   `json:"config_id"` // The identifier to use for session creation
	Name        string   `json:"name"`      // Display name
	Description string   `json:"description"`
	Levels      int      `json:"levels"`
	Rules       []string `json:"rules"`
}
