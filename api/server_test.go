package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wricardo/numdash/game/config"
	"github.com/wricardo/numdash/game/engine"
	"github.com/wricardo/numdash/game/score"
	"github.com/wricardo/numdash/game/service"
	"github.com/wricardo/numdash/game/session"
	"github.com/wricardo/numdash/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc      func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error)
	MoveToFunc    func(ctx context.Context, sessionID string, x, y int) (*service.MoveResult, error)
	NextLevelFunc func(ctx context.Context, sessionID string) (*service.MoveResult, error)

	// Game State
	GetGameStateFunc func(ctx context.Context, sessionID string) (*service.Snapshot, error)
	DescribeCellFunc func(ctx context.Context, sessionID string, x, y int) (*engine.CellView, error)
	GetHistoryFunc   func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Scores
	RecordScoreFunc func(ctx context.Context, sessionID, playerName string) (*service.ScoreResult, error)
	HighScoresFunc  func(ctx context.Context, limit int) ([]score.Entry, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func playingSnapshot() *service.Snapshot {
	return &service.Snapshot{
		Status:        service.StatusPlaying,
		Level:         1,
		Score:         10,
		Lives:         3,
		RuleID:        "even",
		Remaining:     3,
		PossibleMoves: []string{"right", "down"},
		State:         &engine.GameState{PlayerPos: engine.Position{X: 1, Y: 0}},
	}
}

func (m *MockGameService) CreateSession(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, opts)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: opts.ConfigName,
		Mode:       opts.Mode,
		CreatedAt:  time.Now(),
		Snapshot:   playingSnapshot(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction)
	}
	return &service.MoveResult{Success: true, Outcome: engine.OutcomePlainMove, Snapshot: playingSnapshot()}, nil
}

func (m *MockGameService) MoveTo(ctx context.Context, sessionID string, x, y int) (*service.MoveResult, error) {
	if m.MoveToFunc != nil {
		return m.MoveToFunc(ctx, sessionID, x, y)
	}
	return &service.MoveResult{Success: true, Outcome: engine.OutcomePlainMove, Snapshot: playingSnapshot()}, nil
}

func (m *MockGameService) NextLevel(ctx context.Context, sessionID string) (*service.MoveResult, error) {
	if m.NextLevelFunc != nil {
		return m.NextLevelFunc(ctx, sessionID)
	}
	return &service.MoveResult{Success: true, Status: service.StatusStarting, Snapshot: playingSnapshot()}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*service.Snapshot, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return playingSnapshot(), nil
}

func (m *MockGameService) DescribeCell(ctx context.Context, sessionID string, x, y int) (*engine.CellView, error) {
	if m.DescribeCellFunc != nil {
		return m.DescribeCellFunc(ctx, sessionID, x, y)
	}
	return &engine.CellView{X: x, Y: y, Kind: engine.CellEmpty}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Events:     []service.GameEvent{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) RecordScore(ctx context.Context, sessionID, playerName string) (*service.ScoreResult, error) {
	if m.RecordScoreFunc != nil {
		return m.RecordScoreFunc(ctx, sessionID, playerName)
	}
	return &service.ScoreResult{Entry: score.Entry{PlayerName: playerName, Score: 50, Level: 2}, Rank: 1}, nil
}

func (m *MockGameService) HighScores(ctx context.Context, limit int) ([]score.Entry, error) {
	if m.HighScoresFunc != nil {
		return m.HighScoresFunc(ctx, limit)
	}
	return []score.Entry{}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{
		Name:        configName,
		Description: "Test config",
		Levels:      []engine.LevelConfig{{ID: 1, Rule: engine.RuleEven}, {ID: 2, Rule: engine.RuleOdd}},
	}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, cfg *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, cfg)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func serve(mockService *MockGameService, req *http.Request) *httptest.ResponseRecorder {
	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					if opts.ConfigName != "" || opts.Mode != "" {
						t.Errorf("Expected empty options, got %+v", opts)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: "classic", Mode: service.ModeNormal}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name: "Create challenge session with player",
			requestBody: map[string]interface{}{
				"config_id": "quick", "mode": "challenge", "player_name": "Ada", "seed": 42, "manual_tick": true,
			},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					want := service.CreateSessionOptions{ConfigName: "quick", Mode: service.ModeChallenge, PlayerName: "Ada", Seed: 42, ManualTick: true}
					if opts != want {
						t.Errorf("Expected %+v, got %+v", want, opts)
					}
					return &service.SessionInfo{ID: "cd34", ConfigName: opts.ConfigName, Mode: opts.Mode}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Deprecated config_name is accepted",
			requestBody: map[string]interface{}{"config_name": "easy"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					if opts.ConfigName != "easy" {
						t.Errorf("Expected config name 'easy', got %s", opts.ConfigName)
					}
					return &service.SessionInfo{ID: "ef56", ConfigName: opts.ConfigName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Invalid mode",
			requestBody: map[string]interface{}{"mode": "zen"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: %q", service.ErrInvalidMode, opts.Mode)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]interface{}{"config_id": "missing"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config 'missing' not found. Available configs: [classic]")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateSessionOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			var body interface{}
			if tt.requestBody != nil {
				body = tt.requestBody
			}
			w := serve(mockService, makeRequest("POST", "/api/sessions", body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old1", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "new1", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "mid1", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now},
			}, nil
		},
	}

	tests := []struct {
		name      string
		query     string
		wantFirst string
		wantCount int
	}{
		{name: "default sorts by access desc", query: "", wantFirst: "mid1", wantCount: 3},
		{name: "created asc", query: "?sort=created&order=asc", wantFirst: "old1", wantCount: 3},
		{name: "limit", query: "?sort=created&limit=1", wantFirst: "new1", wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(mockService, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Count != tt.wantCount || resp.Total != 3 {
				t.Errorf("Expected count %d total 3, got %d/%d", tt.wantCount, resp.Count, resp.Total)
			}
			if resp.Sessions[0].ID != tt.wantFirst {
				t.Errorf("Expected %s first, got %s", tt.wantFirst, resp.Sessions[0].ID)
			}
		})
	}

	t.Run("service error", func(t *testing.T) {
		failing := &MockGameService{ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return nil, fmt.Errorf("database error")
		}}
		w := serve(failing, makeRequest("GET", "/api/sessions", nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return session.ErrSessionNotFound
			}
			return nil
		},
	}

	w := serve(mockService, makeRequest("GET", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = serve(mockService, makeRequest("GET", "/api/sessions/zz99", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	w = serve(mockService, makeRequest("DELETE", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["message"] != "Session ab12 deleted" {
		t.Errorf("Unexpected delete message %q", resp["message"])
	}

	w = serve(mockService, makeRequest("DELETE", "/api/sessions/zz99", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Game Operation Tests

func TestGetGameState(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*service.Snapshot, error) {
			if sessionID != "ab12" {
				return nil, session.ErrSessionNotFound
			}
			return playingSnapshot(), nil
		},
	}

	w := serve(mockService, makeRequest("GET", "/api/sessions/ab12/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var snap service.Snapshot
	parseResponse(t, w, &snap)
	if snap.RuleID != "even" || snap.Lives != 3 || len(snap.PossibleMoves) != 2 {
		t.Errorf("Unexpected snapshot %+v", snap)
	}

	w = serve(mockService, makeRequest("GET", "/api/sessions/zz99/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name: "move by direction",
			body: map[string]string{"direction": "right"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
					if sessionID != "ab12" || direction != "right" {
						t.Errorf("Unexpected move %s %s", sessionID, direction)
					}
					return &service.MoveResult{Success: true, Outcome: engine.OutcomeCollectCorrect, Snapshot: playingSnapshot()}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "move to cell",
			body: map[string]int{"x": 0, "y": 1},
			setupMock: func(m *MockGameService) {
				m.MoveToFunc = func(ctx context.Context, sessionID string, x, y int) (*service.MoveResult, error) {
					if x != 0 || y != 1 {
						t.Errorf("Expected destination (0,1), got (%d,%d)", x, y)
					}
					return &service.MoveResult{Success: true, Outcome: engine.OutcomePlainMove, Snapshot: playingSnapshot()}, nil
				}
				m.MoveFunc = func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
					t.Error("Move should not be called for a destination")
					return nil, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing direction and destination",
			body:           map[string]int{"x": 1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid direction",
			body: map[string]string{"direction": "north"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
					return nil, fmt.Errorf("%w: %q", service.ErrInvalidDirection, direction)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "game not in play",
			body: map[string]string{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
					return nil, fmt.Errorf("%w: status is starting", service.ErrNotPlaying)
				}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "unknown session",
			body: map[string]string{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
					return nil, fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			w := serve(mockService, makeRequest("POST", "/api/sessions/ab12/move", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/sessions/ab12/move", bytes.NewBufferString("{oops"))
		w := serve(&MockGameService{}, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestNextLevel(t *testing.T) {
	mockService := &MockGameService{
		NextLevelFunc: func(ctx context.Context, sessionID string) (*service.MoveResult, error) {
			if sessionID == "busy" {
				return nil, fmt.Errorf("%w: status is playing", service.ErrLevelNotComplete)
			}
			snap := playingSnapshot()
			snap.Level = 2
			snap.Status = service.StatusStarting
			return &service.MoveResult{Success: true, Status: snap.Status, Message: "Level 2", Snapshot: snap}, nil
		},
	}

	w := serve(mockService, makeRequest("POST", "/api/sessions/ab12/next-level", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var result service.MoveResult
	parseResponse(t, w, &result)
	if result.Snapshot.Level != 2 || result.Status != service.StatusStarting {
		t.Errorf("Unexpected result %+v", result)
	}

	w = serve(mockService, makeRequest("POST", "/api/sessions/busy/next-level", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}

func TestDescribeCell(t *testing.T) {
	mockService := &MockGameService{
		DescribeCellFunc: func(ctx context.Context, sessionID string, x, y int) (*engine.CellView, error) {
			return &engine.CellView{X: x, Y: y, Kind: engine.CellNumber, Display: "4", HasValue: true, Matches: true}, nil
		},
	}

	w := serve(mockService, makeRequest("GET", "/api/sessions/ab12/cell?x=2&y=3", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var cell engine.CellView
	parseResponse(t, w, &cell)
	if cell.X != 2 || cell.Y != 3 || cell.Display != "4" || !cell.Matches {
		t.Errorf("Unexpected cell %+v", cell)
	}

	w = serve(mockService, makeRequest("GET", "/api/sessions/ab12/cell?x=two&y=3", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  service.HistoryOptions
	}{
		{name: "defaults", query: "", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{name: "custom", query: "?page=3&limit=5&order=asc", want: service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{name: "invalid values fall back", query: "?page=-1&limit=x&order=sideways", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Events: []service.GameEvent{{Seq: 1, Type: "level_started"}}, TotalEvents: 1}, nil
				},
			}
			w := serve(mockService, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.want {
				t.Errorf("Expected options %+v, got %+v", tt.want, got)
			}
		})
	}
}

// Score Tests

func TestRecordScore(t *testing.T) {
	mockService := &MockGameService{
		RecordScoreFunc: func(ctx context.Context, sessionID, playerName string) (*service.ScoreResult, error) {
			switch sessionID {
			case "live":
				return nil, service.ErrGameNotOver
			case "done":
				return nil, service.ErrScoreAlreadyRecorded
			case "bad":
				return nil, fmt.Errorf("%w: player name is required", score.ErrInvalidEntry)
			case "disk":
				return nil, fmt.Errorf("%w: disk full", score.ErrScoreNotRecorded)
			}
			return &service.ScoreResult{Entry: score.Entry{PlayerName: playerName, Score: 120}, Rank: 2}, nil
		},
	}

	w := serve(mockService, makeRequest("POST", "/api/sessions/ab12/score", map[string]string{"player_name": "Ada"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	var result service.ScoreResult
	parseResponse(t, w, &result)
	if result.Entry.PlayerName != "Ada" || result.Rank != 2 {
		t.Errorf("Unexpected score result %+v", result)
	}

	for id, status := range map[string]int{
		"live": http.StatusConflict,
		"done": http.StatusConflict,
		"bad":  http.StatusBadRequest,
		"disk": http.StatusServiceUnavailable,
	} {
		w := serve(mockService, makeRequest("POST", "/api/sessions/"+id+"/score", map[string]string{"player_name": "Ada"}))
		if w.Code != status {
			t.Errorf("%s: expected status %d, got %d", id, status, w.Code)
		}
	}
}

func TestHighScores(t *testing.T) {
	var gotLimit int
	mockService := &MockGameService{
		HighScoresFunc: func(ctx context.Context, limit int) ([]score.Entry, error) {
			gotLimit = limit
			return []score.Entry{{PlayerName: "Ada", Score: 300}, {PlayerName: "Bob", Score: 200}}, nil
		},
	}

	w := serve(mockService, makeRequest("GET", "/api/scores", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotLimit != score.MaxEntries {
		t.Errorf("Expected default limit %d, got %d", score.MaxEntries, gotLimit)
	}
	var resp struct {
		Count  int           `json:"count"`
		Scores []score.Entry `json:"scores"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 2 || resp.Scores[0].PlayerName != "Ada" {
		t.Errorf("Unexpected scores %+v", resp)
	}

	serve(mockService, makeRequest("GET", "/api/scores?limit=3", nil))
	if gotLimit != 3 {
		t.Errorf("Expected limit 3, got %d", gotLimit)
	}
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	var savedID string
	var savedConfig *engine.GameConfig
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Name: "Classic", Levels: 10}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "classic" {
				return nil, config.ErrConfigNotFound
			}
			return engine.DefaultGameConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.GameConfig) error {
			if len(cfg.Levels) == 0 {
				return fmt.Errorf("%w: at least one level is required", config.ErrInvalidConfig)
			}
			savedID, savedConfig = configName, cfg
			return nil
		},
	}

	t.Run("list", func(t *testing.T) {
		w := serve(mockService, makeRequest("GET", "/api/configs", nil))
		var configs []service.ConfigInfo
		parseResponse(t, w, &configs)
		if len(configs) != 1 || configs[0].ConfigID != "classic" {
			t.Errorf("Unexpected configs %+v", configs)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := serve(mockService, makeRequest("GET", "/api/configs/classic", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		w = serve(mockService, makeRequest("GET", "/api/configs/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		body := map[string]interface{}{
			"name":        "My Levels!",
			"description": "custom",
			"levels":      []map[string]interface{}{{"rule": "prime", "grid_size": 6, "enemy_count": 1}},
		}
		w := serve(mockService, makeRequest("POST", "/api/configs", body))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if savedID != "my_levels" {
			t.Errorf("Expected id my_levels, got %q", savedID)
		}
		if savedConfig.Levels[0].Rule != engine.RulePrime {
			t.Errorf("Unexpected saved config %+v", savedConfig)
		}
	})

	t.Run("create with explicit id", func(t *testing.T) {
		body := map[string]interface{}{
			"config_id": "speedrun.yaml",
			"name":      "Speed",
			"levels":    []map[string]interface{}{{"rule": "odd", "grid_size": 5, "enemy_count": 1}},
		}
		w := serve(mockService, makeRequest("POST", "/api/configs", body))
		if w.Code != http.StatusCreated || savedID != "speedrun.yaml" {
			t.Errorf("Expected speedrun.yaml saved, got %d %q", w.Code, savedID)
		}
	})

	t.Run("create rejects", func(t *testing.T) {
		w := serve(mockService, makeRequest("POST", "/api/configs", map[string]interface{}{"description": "no name"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 without name, got %d", w.Code)
		}
		w = serve(mockService, makeRequest("POST", "/api/configs", map[string]interface{}{"name": "Empty"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for invalid config, got %d", w.Code)
		}
	})
}

func TestUnifiedSessions(t *testing.T) {
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "aa11", ConfigName: "classic"},
				{ID: "bb22", ConfigName: "quick"},
			}, nil
		},
	}

	w := serve(mockService, makeRequest("GET", "/api/sessions/unified?configName=quick", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		ConfigName  string                   `json:"config_name"`
		TotalLevels int                      `json:"total_levels"`
		Sessions    []map[string]interface{} `json:"sessions"`
	}
	parseResponse(t, w, &resp)
	if resp.ConfigName != "quick" || resp.TotalLevels != 2 || len(resp.Sessions) != 1 {
		t.Errorf("Unexpected unified response %+v", resp)
	}

	w = serve(mockService, makeRequest("GET", "/api/sessions/unified?sessionIds=aa11,%20cc33", nil))
	parseResponse(t, w, &resp)
	if len(resp.Sessions) != 2 {
		t.Errorf("Expected both requested ids from the default mock, got %d", len(resp.Sessions))
	}
}

func TestHealthAndWebSocket(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*service.Snapshot, error) {
			return nil, session.ErrSessionNotFound
		},
	}

	w := serve(mockService, makeRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 from /health, got %d", w.Code)
	}

	w = serve(mockService, makeRequest("GET", "/ws", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without session, got %d", w.Code)
	}

	w = serve(mockService, makeRequest("GET", "/ws?session=zz99", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown session, got %d", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("session not found: %w", session.ErrSessionNotFound), http.StatusNotFound},
		{config.ErrConfigNotFound, http.StatusNotFound},
		{service.ErrInvalidDirection, http.StatusBadRequest},
		{config.ErrInvalidName, http.StatusBadRequest},
		{service.ErrLevelNotComplete, http.StatusConflict},
		{score.ErrScoreNotRecorded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestConfigIDFromName(t *testing.T) {
	tests := map[string]string{
		"Classic":          "classic",
		"  My Levels! ":    "my_levels",
		"speed-run_2":      "speed-run_2",
		"../../etc/passwd": "etcpasswd",
	}
	for in, want := range tests {
		if got := configIDFromName(in); got != want {
			t.Errorf("configIDFromName(%q) = %q, want %q", in, got, want)
		}
	}
}
