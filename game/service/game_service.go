package service

import (
	"context"
	"time"

	"github.com/wricardo/numdash/game/engine"
	"github.com/wricardo/numdash/game/score"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	MoveTo(ctx context.Context, sessionID string, x, y int) (*MoveResult, error)
	NextLevel(ctx context.Context, sessionID string) (*MoveResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*Snapshot, error)
	DescribeCell(ctx context.Context, sessionID string, x, y int) (*engine.CellView, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Scores
	RecordScore(ctx context.Context, sessionID, playerName string) (*ScoreResult, error)
	HighScores(ctx context.Context, limit int) ([]score.Entry, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, opts CreateSessionOptions) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles level catalogue loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Game is one running game: the level state machine behind a session
type Game interface {
	Move(direction engine.Direction) (engine.Resolution, []GameEvent, error)
	MoveTo(dest engine.Position) (engine.Resolution, []GameEvent, error)
	NextLevel() ([]GameEvent, error)
	Snapshot() Snapshot
	DescribeCell(p engine.Position) engine.CellView
	History(opts HistoryOptions) HistoryResponse
	RecordScore(playerName string) (score.Entry, int, error)
	Stop()
}

// Session represents an active game session
type Session struct {
	ID             string
	Game           Game
	Config         *engine.GameConfig
	ConfigName     string
	Mode           Mode
	PlayerName     string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
