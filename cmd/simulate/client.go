package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/crusade/game/engine"
	"github.com/wricardo/crusade/game/service"
)

// Client talks to the REST API of a running solver
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type turnRequest struct {
	Player  engine.PathNode   `json:"player"`
	Hazards []engine.PathNode `json:"hazards,omitempty"`
}

type resetResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

func (c *Client) ListLevels(ctx context.Context) ([]service.LevelInfo, error) {
	var levels []service.LevelInfo
	if err := c.do(ctx, http.MethodGet, "/api/levels", nil, &levels); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}

func (c *Client) CreateSession(ctx context.Context, levelID string) (*service.SessionInfo, error) {
	req := map[string]string{"level_id": levelID}
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &info, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/sessions/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (c *Client) PlayTurn(ctx context.Context, id string, player engine.PathNode, hazards []engine.PathNode) (*service.TurnResult, error) {
	var result service.TurnResult
	req := turnRequest{Player: player, Hazards: hazards}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+id+"/turn", req, &result); err != nil {
		return nil, fmt.Errorf("play turn: %w", err)
	}
	return &result, nil
}

func (c *Client) Reset(ctx context.Context, id string) (*engine.GameState, error) {
	var resp resetResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+id+"/reset", nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
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

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if result == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
