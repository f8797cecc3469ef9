package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/wricardo/numdash/game/engine"
	"github.com/wricardo/numdash/game/score"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   score.Store
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. scores may be nil, in
// which case HighScores returns an empty table.
func NewGameService(sessions SessionManager, configs ConfigManager, scores score.Store) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		scores:   scores,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	snap := sess.Game.Snapshot()
	configID := sess.ConfigName
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		Mode:           sess.Mode,
		PlayerName:     sess.PlayerName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       &snap,
	}
}

// CreateSession creates and starts a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode, ok := ParseMode(string(opts.Mode))
	if !ok {
		return nil, fmt.Errorf("%w: %q (use normal or challenge)", ErrInvalidMode, opts.Mode)
	}
	opts.Mode = mode

	// Load configuration
	var config *engine.GameConfig
	var err error
	if opts.ConfigName != "" {
		config, err = s.configs.LoadConfig(opts.ConfigName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", opts.ConfigName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", opts.ConfigName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", opts.ConfigName, err)
		}
	} else {
		config = s.configs.GetDefault()
		opts.ConfigName = s.getConfigID(config.Name)
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession stops and removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// lookup fetches a session and marks it accessed. Game calls serialize on the
// game itself, so the service lock is only held for the registry read.
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// Move executes a single move in a direction
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	dir, ok := engine.ParseDirection(direction)
	if !ok {
		return nil, fmt.Errorf("%w: %q (use up, down, left or right)", ErrInvalidDirection, direction)
	}

	res, events, err := sess.Game.Move(dir)
	if err != nil {
		return nil, err
	}
	return moveResult(sess.Game, res, events), nil
}

// MoveTo executes a single move onto an adjacent cell
func (s *gameServiceImpl) MoveTo(ctx context.Context, sessionID string, x, y int) (*MoveResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	res, events, err := sess.Game.MoveTo(engine.Position{X: x, Y: y})
	if err != nil {
		return nil, err
	}
	return moveResult(sess.Game, res, events), nil
}

func moveResult(game Game, res engine.Resolution, events []GameEvent) *MoveResult {
	snap := game.Snapshot()
	if events == nil {
		events = []GameEvent{}
	}

	message := snap.Message
	switch res.Outcome {
	case engine.OutcomeIgnored:
		message = "Move ignored"
	case engine.OutcomeBlocked:
		message = "Blocked by a wall"
	}

	return &MoveResult{
		Success:  res.Outcome != engine.OutcomeIgnored && res.Outcome != engine.OutcomeBlocked,
		Outcome:  res.Outcome,
		Status:   snap.Status,
		Message:  message,
		Events:   events,
		Snapshot: &snap,
	}
}

// NextLevel advances a completed level
func (s *gameServiceImpl) NextLevel(ctx context.Context, sessionID string) (*MoveResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	events, err := sess.Game.NextLevel()
	if err != nil {
		return nil, err
	}

	snap := sess.Game.Snapshot()
	message := snap.Message
	if len(events) > 0 {
		message = events[len(events)-1].Message
	}
	return &MoveResult{
		Success:  true,
		Status:   snap.Status,
		Message:  message,
		Events:   events,
		Snapshot: &snap,
	}, nil
}

// GetGameState returns the current snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	snap := sess.Game.Snapshot()
	return &snap, nil
}

// DescribeCell reports what is on a board cell
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, x, y int) (*engine.CellView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	cell := sess.Game.DescribeCell(engine.Position{X: x, Y: y})
	return &cell, nil
}

// GetHistory returns paginated event history for a session
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Game.History(opts)
	return &history, nil
}

// RecordScore saves a finished session's score
func (s *gameServiceImpl) RecordScore(ctx context.Context, sessionID, playerName string) (*ScoreResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(playerName) == "" {
		playerName = sess.PlayerName
	}
	entry, rank, err := sess.Game.RecordScore(playerName)
	if err != nil {
		return nil, err
	}
	return &ScoreResult{Entry: entry, Rank: rank}, nil
}

// HighScores returns the best recorded scores
func (s *gameServiceImpl) HighScores(ctx context.Context, limit int) ([]score.Entry, error) {
	if s.scores == nil {
		return []score.Entry{}, nil
	}
	entries, err := s.scores.Top(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load high scores: %w", err)
	}
	if entries == nil {
		entries = []score.Entry{}
	}
	return entries, nil
}

// ListConfigs returns available level catalogues
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level catalogue
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level catalogue to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
