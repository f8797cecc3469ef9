package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/numdash/game/engine"
	"github.com/wricardo/numdash/game/score"
	"github.com/wricardo/numdash/game/service"
)

func testSnapshot() *service.Snapshot {
	return &service.Snapshot{
		Status:          service.StatusPlaying,
		Mode:            service.ModeNormal,
		Level:           2,
		Score:           30,
		Lives:           2,
		RuleName:        "Odd Numbers",
		RuleDescription: "Collect all odd numbers",
		Remaining:       4,
		PossibleMoves:   []string{"up", "left"},
		Rows:            []string{"P 3 .", ". # 4", "7 . G"},
		Message:         "Collected 5! +10 points",
		State:           &engine.GameState{PlayerPos: engine.Position{X: 0, Y: 0}, GlitchesActive: true},
	}
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "ab12", "score": 5})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api/sessions/ab12", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall("GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "game is not in play"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error', got: %v", err)
	}

	err = client.apiCall("GET", "/json", nil, nil)
	if err == nil || err.Error() != "game is not in play" {
		t.Errorf("Expected API error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, service.SessionInfo{
			ID:         "ab12",
			ConfigName: "classic",
			Mode:       service.ModeChallenge,
			Snapshot:   testSnapshot(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{
		"config_name": "classic",
		"mode":        "challenge",
		"player_name": "Ada",
		"seed":        float64(7),
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Created session: ab12", "Mode: challenge", "Rule: Odd Numbers"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}

	if got["config_id"] != "classic" || got["mode"] != "challenge" || got["player_name"] != "Ada" || got["seed"] != float64(7) {
		t.Errorf("Unexpected request body %v", got)
	}
	if got["manual_tick"] != true {
		t.Errorf("Expected manual ticks by default, got %v", got["manual_tick"])
	}
}

func TestClient_moveTools(t *testing.T) {
	var bodies []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/move" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)

		if body["direction"] == "down" {
			writeJSON(w, http.StatusOK, service.MoveResult{
				Success:  false,
				Outcome:  engine.OutcomeBlocked,
				Message:  "Blocked by a wall",
				Events:   []service.GameEvent{},
				Snapshot: testSnapshot(),
			})
			return
		}
		writeJSON(w, http.StatusOK, service.MoveResult{
			Success:  true,
			Outcome:  engine.OutcomeCollectCorrect,
			Events:   []service.GameEvent{{Type: "score", Message: "Collected 3! +10 points"}},
			Snapshot: testSnapshot(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, _ := client.handleMove(ctx, callTool("move", map[string]interface{}{"session_id": "ab12", "direction": "right", "intent": "grab the 3"}))
	text := resultText(t, result)
	if !strings.Contains(text, "✓ Move: collect_correct") || !strings.Contains(text, "Collected 3! +10 points") {
		t.Errorf("Unexpected move output: %s", text)
	}

	result, _ = client.handleMove(ctx, callTool("move", map[string]interface{}{"session_id": "ab12", "direction": "down"}))
	if text := resultText(t, result); !strings.Contains(text, "✗ Blocked by a wall") {
		t.Errorf("Expected blocked output, got: %s", text)
	}

	result, _ = client.handleMoveTo(ctx, callTool("move_to", map[string]interface{}{"session_id": "ab12", "x": float64(1), "y": float64(0)}))
	resultText(t, result)
	if len(bodies) != 3 || bodies[2]["x"] != float64(1) || bodies[2]["y"] != float64(0) {
		t.Errorf("Expected move_to body with x and y, got %v", bodies)
	}

	result, _ = client.handleMoveTo(ctx, callTool("move_to", map[string]interface{}{"session_id": "ab12", "x": float64(1)}))
	if !result.IsError {
		t.Error("Expected error result without y")
	}
}

func TestClient_stateAndCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/sessions/ab12/state":
			writeJSON(w, http.StatusOK, testSnapshot())
		case "/api/sessions/ab12/cell":
			if r.URL.Query().Get("x") != "2" || r.URL.Query().Get("y") != "1" {
				t.Errorf("Unexpected query %s", r.URL.RawQuery)
			}
			writeJSON(w, http.StatusOK, engine.CellView{X: 2, Y: 1, Kind: engine.CellNumber, Display: "4", HasValue: true})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, _ := client.handleGameState(ctx, callTool("game_state", map[string]interface{}{"session_id": "ab12"}))
	text := resultText(t, result)
	for _, want := range []string{"Level: 2 | Score: 30 | Lives: 2", "P 3 .", "Possible moves: up, left", "Glitches: awake"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in state, got: %s", want, text)
		}
	}

	result, _ = client.handleDescribeCell(ctx, callTool("describe_cell", map[string]interface{}{"session_id": "ab12", "x": float64(2), "y": float64(1)}))
	if text := resultText(t, result); !strings.Contains(text, "Value: 4 (does NOT match the rule)") {
		t.Errorf("Unexpected cell output: %s", text)
	}

	result, _ = client.handleGameState(ctx, callTool("game_state", map[string]interface{}{"session_id": "zz99"}))
	if !result.IsError || !strings.Contains(resultText(t, result), "session not found") {
		t.Error("Expected error result for unknown session")
	}
}

func TestClient_scores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/sessions/ab12/score":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusCreated, service.ScoreResult{
				Entry: score.Entry{PlayerName: body["player_name"], Score: 90, Level: 3},
				Rank:  1,
			})
		case "/api/scores":
			if r.URL.Query().Get("limit") != "5" {
				t.Errorf("Expected limit 5, got %q", r.URL.Query().Get("limit"))
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"scores": []score.Entry{{PlayerName: "Ada", Score: 90, Level: 3, RuleCategory: "Prime Numbers", Mode: "normal"}},
			})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, _ := client.handleRecordScore(ctx, callTool("record_score", map[string]interface{}{"session_id": "ab12", "player_name": "Ada"}))
	if text := resultText(t, result); !strings.Contains(text, "Score saved for Ada: 90 points") || !strings.Contains(text, "#1") {
		t.Errorf("Unexpected record output: %s", text)
	}

	result, _ = client.handleHighScores(ctx, callTool("high_scores", map[string]interface{}{"limit": float64(5)}))
	if text := resultText(t, result); !strings.Contains(text, "Ada") || !strings.Contains(text, "Prime Numbers") {
		t.Errorf("Unexpected high scores output: %s", text)
	}
}

func TestFormatSnapshot(t *testing.T) {
	if got := formatSnapshot(nil); got != "No game state available" {
		t.Errorf("Unexpected nil output %q", got)
	}

	tests := []struct {
		name   string
		mutate func(*service.Snapshot)
		want   string
	}{
		{name: "game over", mutate: func(s *service.Snapshot) { s.Status = service.StatusGameOver }, want: "💀 GAME OVER"},
		{name: "level complete", mutate: func(s *service.Snapshot) { s.Status = service.StatusLevelComplete }, want: "call next_level to continue"},
		{name: "final level", mutate: func(s *service.Snapshot) { s.Status = service.StatusLevelComplete; s.FinalLevel = true }, want: "finish the game"},
		{name: "challenge", mutate: func(s *service.Snapshot) { s.Mode = service.ModeChallenge; s.Multiplier = 1.4; s.Tier = 2 }, want: "Challenge x1.4 | Glitch tier: 2"},
		{name: "notice", mutate: func(s *service.Snapshot) { s.Notice = "Score saved." }, want: "Notice: Score saved."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := testSnapshot()
			tt.mutate(snap)
			if got := formatSnapshot(snap); !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in output, got: %s", tt.want, got)
			}
		})
	}
}

func TestFormatHistory(t *testing.T) {
	history := &service.HistoryResponse{
		Events: []service.GameEvent{
			{Seq: 2, Type: "life_lost", Message: "Caught by a glitch! Lost a life!", Level: 1, Lives: 2},
		},
		TotalEvents: 2,
		Page:        1,
		TotalPages:  2,
		HasNext:     true,
	}

	got := formatHistory(history)
	for _, want := range []string{"page 1/2, 2 events", "#2 [life_lost]", "next page"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in history, got: %s", want, got)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{
		"Num Dash - Complete Instructions",
		"GAME OBJECTIVE:",
		"RULES:",
		"GRID LEGEND:",
		"SCORING AND LIVES:",
		"GLITCHES:",
		"MOVEMENT COMMANDS:",
		"MODES:",
		"HIGH SCORES:",
	} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
