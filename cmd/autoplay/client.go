package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/numdash/game/service"
)

// Client plays a session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) CreateSession(opts service.CreateSessionOptions) (*service.Snapshot, error) {
	body := map[string]interface{}{
		"mode":        opts.Mode,
		"manual_tick": opts.ManualTick,
	}
	if opts.ConfigName != "" {
		body["config_id"] = opts.ConfigName
	}
	if opts.PlayerName != "" {
		body["player_name"] = opts.PlayerName
	}
	if opts.Seed != 0 {
		body["seed"] = opts.Seed
	}

	var info service.SessionInfo
	if err := c.do("POST", "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = info.ID
	return info.Snapshot, nil
}

func (c *Client) GetState() (*service.Snapshot, error) {
	var snap service.Snapshot
	if err := c.do("GET", c.sessionPath("/state"), nil, &snap); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &snap, nil
}

func (c *Client) Move(direction string) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do("POST", c.sessionPath("/move"), map[string]string{"direction": direction}, &result); err != nil {
		return nil, fmt.Errorf("execute move: %w", err)
	}
	return &result, nil
}

func (c *Client) NextLevel() (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do("POST", c.sessionPath("/next-level"), nil, &result); err != nil {
		return nil, fmt.Errorf("next level: %w", err)
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func (c *Client) do(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s - %s", resp.Status, bytes.TrimSpace(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
