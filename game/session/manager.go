package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/numdash/game/engine"
	"github.com/wricardo/numdash/game/score"
	"github.com/wricardo/numdash/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Notifier receives a session's snapshot after every transition
type Notifier func(sessionID string, snap service.Snapshot)

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	recorder *score.Recorder
	notifier Notifier
	mu       sync.RWMutex
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithRecorder makes finished games record their scores
func WithRecorder(r *score.Recorder) ManagerOption {
	return func(m *Manager) { m.recorder = r }
}

// WithNotifier pushes snapshots to n, typically a websocket hub
func WithNotifier(n Notifier) ManagerOption {
	return func(m *Manager) { m.notifier = n }
}

// NewManager creates a new session manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates and starts a new session with the given ID and configuration
func (m *Manager) Create(id string, config *engine.GameConfig, opts service.CreateSessionOptions) (*service.Session, error) {
	if strings.ContainsAny(id, "/ ") {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
		for m.sessionExists(id) {
			id = m.generateSessionID()
		}
	}

	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	controllerOpts := ControllerOptions{
		Mode:       opts.Mode,
		PlayerName: strings.TrimSpace(opts.PlayerName),
		Seed:       opts.Seed,
		ManualTick: opts.ManualTick,
		Recorder:   m.recorder,
	}
	if m.notifier != nil {
		notifier, sessionID := m.notifier, id
		controllerOpts.OnUpdate = func(snap service.Snapshot) { notifier(sessionID, snap) }
	}

	controller, err := NewController(config, controllerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	session := &service.Session{
		ID:             id,
		Game:           controller,
		Config:         config,
		ConfigName:     opts.ConfigName,
		Mode:           controllerOpts.Mode,
		PlayerName:     controllerOpts.PlayerName,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	if session.Mode == "" {
		session.Mode = service.ModeNormal
	}

	m.sessions[strings.ToLower(id)] = session
	controller.Start()

	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete stops and removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Game.Stop()
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions stops and removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			session.Game.Stop()
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// StopAll cancels every session's glitch timer, used on shutdown
func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, session := range m.sessions {
		session.Game.Stop()
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	// Generate 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
