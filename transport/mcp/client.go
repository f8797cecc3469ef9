package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/numdash/game/engine"
	"github.com/wricardo/numdash/game/score"
	"github.com/wricardo/numdash/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Num Dash",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Num Dash - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Each level has a rule such as "Even Numbers" or "Additions Of 12". Walk onto every
cell whose number or expression matches the rule to clear the level. Wrong cells and
glitches (G) cost a life.

AVAILABLE TOOLS:
- create_session: Start a game (glitches only move when you move, unless real_time is true)
- game_state: Board, rule, score, lives and possible moves
- move: Single move (up/down/left/right) - requires intent explanation
- move_to: Step onto an adjacent cell by coordinates
- next_level: Continue after a level is complete
- describe_cell: Check what a cell holds and whether it matches the rule
- event_history: Past events of a session
- record_score: Save a finished game to the high score table
- high_scores: Show the high score table
- get_session / list_sessions / list_configs / game_instructions

NOTE: The 'intent' parameter on move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config, mode and player name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Level catalogue to use (optional, see list_configs)",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"normal", "challenge"},
					"description": "normal plays the catalogue once; challenge repeats it with rising difficulty",
				},
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Name for the high score table; the score is saved automatically when the game ends",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Board seed for reproducible games (optional)",
				},
				"real_time": map[string]interface{}{
					"type":        "boolean",
					"description": "Let glitches move on a timer instead of only when you move (default false)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, rule and status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_to",
		Description: "Move the player onto an orthogonally adjacent cell. Other cells are ignored.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column, 0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row, 0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleMoveTo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "next_level",
		Description: "Start the next level after the current one is complete",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleNextLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_history",
		Description: "Get the event history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventHistory)

	// Scores
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "record_score",
		Description: "Save the score of a finished game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Name shown in the table (defaults to the session's player name)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRecordScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_scores",
		Description: "Show the high score table",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of entries (default 10)",
				},
			},
		},
	}, c.handleHighScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available level catalogues",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a cell: wall, player, glitch, number or empty, and whether its value matches the rule.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell to describe (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell to describe (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configName, _ := args["config_name"].(string); configName != "" {
		body["config_id"] = configName
	}
	if mode, _ := args["mode"].(string); mode != "" {
		body["mode"] = mode
	}
	if player, _ := args["player_name"].(string); player != "" {
		body["player_name"] = player
	}
	if seed, ok := intArg(args, "seed"); ok {
		body["seed"] = seed
	}
	realTime, _ := args["real_time"].(bool)
	body["manual_tick"] = !realTime

	var info service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nMode: %s\n", info.ID, info.ConfigName, info.Mode)
	if info.Snapshot != nil {
		result += "\n" + formatSnapshot(info.Snapshot)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		line := fmt.Sprintf("- %s (Config: %s, Mode: %s, Created: %s)", s.ID, s.ConfigName, s.Mode, s.CreatedAt.Format("15:04:05"))
		if s.Snapshot != nil {
			line += fmt.Sprintf(" level %d, score %d, %s", s.Snapshot.Level, s.Snapshot.Score, s.Snapshot.Status)
		}
		result.WriteString(line + "\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var info service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap service.Snapshot
	if err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	var result service.MoveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/move"), map[string]interface{}{"direction": direction}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleMoveTo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var result service.MoveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/move"), map[string]interface{}{"x": x, "y": y}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleNextLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.MoveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/next-level"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := result.Message + "\n\n"
	if result.Snapshot != nil {
		response += formatSnapshot(result.Snapshot)
	}
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleEventHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleRecordScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	playerName, _ := args["player_name"].(string)

	var result service.ScoreResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/score"), map[string]string{"player_name": playerName}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Score saved for %s: %d points (level %d)", result.Entry.PlayerName, result.Entry.Score, result.Entry.Level)
	if result.Rank > 0 {
		text += fmt.Sprintf("\nYou placed #%d.", result.Rank)
	} else {
		text += "\nNot in the top scores this time."
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleHighScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/scores"
	if limit, ok := intArg(arguments(request), "limit"); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var response struct {
		Scores []score.Entry `json:"scores"`
	}
	if err := c.apiCall("GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHighScores(response.Scores)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		result.WriteString(fmt.Sprintf("• %s (config_name: %s)\n  %s\n  Levels: %d, Rules: %s\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Levels, strings.Join(cfg.Rules, ", ")))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Num Dash - Complete Instructions

GAME OBJECTIVE:
Every level shows a rule. Collect every cell on the board that matches it. When the
last matching cell is collected the level is complete; call next_level to continue.

RULES:
• Even Numbers / Odd Numbers / Prime Numbers
• Equals N: numbers or expressions whose value is N
• Factors Of N: numbers that divide N
• Multiples Of N, Additions Of N, Subtractions Of N: expressions (a×b, a+b, a-b) equal to N
• Greater Than N / Less Than N

GRID LEGEND:
• P - You
• G - Glitch (shown once the glitches wake up)
• # - Wall (impassable)
• . - Empty cell
• 4, 3+5, 9-2, 2×6 - Number or expression cells

SCORING AND LIVES:
• Correct cell: +10 points, the cell is cleared
• Wrong cell: lose a life, the cell is cleared too
• Glitch contact while they chase: lose a life, you return to the level start
• You cannot step onto a glitch; that move is ignored
• Lives reset at every level. Game over at 0 lives.

GLITCHES:
• They sleep for a short grace period at the start of each level
  (without real_time they wake after your first 5 moves)
• Early on they wander; when one matching cell is left they chase you
• A glitch that walks over a number may eat it

MOVEMENT COMMANDS:
• move with direction: up, down, left, right
• move_to with x, y of an adjacent cell
• Edges and walls block movement; a blocked move costs nothing

STRATEGY:
• Use describe_cell when unsure whether an expression matches the rule
• Plan a route that leaves the cell furthest from the glitches for last
• Watch "Remaining" in game_state. At 1 the glitches hunt you.

MODES:
• normal: play the catalogue once; clearing the last level is a victory
• challenge: the catalogue repeats with bigger boards, more and faster glitches

HIGH SCORES:
• Create the session with player_name to save automatically at game over
• Or call record_score after the game ends

Good luck, and mind the glitches!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var cell engine.CellView
	if err := c.apiCall("GET", sessionPath(sessionID, fmt.Sprintf("/cell?x=%d&y=%d", x, y)), nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	player := info.PlayerName
	if player == "" {
		player = "(anonymous)"
	}
	return fmt.Sprintf("Session: %s\nConfig: %s\nMode: %s\nPlayer: %s\nCreated: %s\n\n%s",
		info.ID, info.ConfigName, info.Mode, player,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(info.Snapshot))
}

func formatSnapshot(snap *service.Snapshot) string {
	if snap == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Level: %d | Score: %d | Lives: %d | Status: %s\n",
		snap.Level, snap.Score, snap.Lives, snap.Status))
	result.WriteString(fmt.Sprintf("Rule: %s - %s | Remaining: %d\n", snap.RuleName, snap.RuleDescription, snap.Remaining))
	if snap.Mode == service.ModeChallenge {
		result.WriteString(fmt.Sprintf("Challenge x%.1f | Glitch tier: %d\n", snap.Multiplier, snap.Tier))
	}
	if snap.State != nil {
		result.WriteString(fmt.Sprintf("Position: (%d,%d)", snap.State.PlayerPos.X, snap.State.PlayerPos.Y))
		if snap.State.GlitchesActive {
			result.WriteString(" | Glitches: awake")
		} else {
			result.WriteString(" | Glitches: asleep")
		}
		result.WriteString("\n")
	}
	result.WriteString("\n")

	for _, row := range snap.Rows {
		result.WriteString(row + "\n")
	}

	if len(snap.PossibleMoves) > 0 {
		result.WriteString(fmt.Sprintf("\nPossible moves: %s\n", strings.Join(snap.PossibleMoves, ", ")))
	}

	switch snap.Status {
	case service.StatusLevelComplete:
		if snap.FinalLevel {
			result.WriteString("\n🏁 LEVEL COMPLETE - call next_level to finish the game")
		} else {
			result.WriteString("\n✅ LEVEL COMPLETE - call next_level to continue")
		}
	case service.StatusGameOver:
		result.WriteString("\n💀 GAME OVER")
	case service.StatusStarting:
		result.WriteString("\n⏳ Level starting")
	}

	if snap.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", snap.Message))
	}
	if snap.Notice != "" {
		result.WriteString(fmt.Sprintf("\nNotice: %s", snap.Notice))
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	response := ""
	if result.Success {
		response = fmt.Sprintf("✓ Move: %s\n", result.Outcome)
	} else {
		response = fmt.Sprintf("✗ %s\n", result.Message)
	}

	for _, e := range result.Events {
		if e.Message != "" {
			response += fmt.Sprintf("• %s\n", e.Message)
		}
	}

	return response + "\n" + formatSnapshot(result.Snapshot)
}

func formatCell(cell *engine.CellView) string {
	text := fmt.Sprintf("Cell (%d,%d): %s", cell.X, cell.Y, cell.Kind)
	if cell.HasValue {
		verdict := "does NOT match the rule"
		if cell.Matches {
			verdict = "matches the rule"
		}
		text += fmt.Sprintf("\nValue: %s (%s)", cell.Display, verdict)
	}
	switch cell.Kind {
	case engine.CellWall, engine.CellEdge:
		text += "\nImpassable"
	case engine.CellGlitch:
		text += "\nDanger: a glitch is here"
	}
	return text
}

func formatHistory(history *service.HistoryResponse) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Event History (page %d/%d, %d events):\n\n",
		history.Page, history.TotalPages, history.TotalEvents))
	for _, e := range history.Events {
		result.WriteString(fmt.Sprintf("#%d [%s] %s at (%d,%d) | level %d score %d lives %d\n",
			e.Seq, e.Type, e.Message, e.Position.X, e.Position.Y, e.Level, e.Score, e.Lives))
	}
	if history.HasNext {
		result.WriteString("\nMore events on the next page.")
	}
	return result.String()
}

func formatHighScores(entries []score.Entry) string {
	if len(entries) == 0 {
		return "No high scores yet."
	}
	var result strings.Builder
	result.WriteString("High Scores:\n\n")
	for i, e := range entries {
		result.WriteString(fmt.Sprintf("%2d. %-20s %6d  level %d  %s (%s)\n",
			i+1, e.PlayerName, e.Score, e.Level, e.RuleCategory, e.Mode))
	}
	return result.String()
}
