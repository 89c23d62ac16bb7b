package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jwebster45206/npc-world/internal/handlers"
	"github.com/jwebster45206/npc-world/pkg/actor"
	"github.com/jwebster45206/npc-world/pkg/world"
)

// APIClient talks to the NPC World HTTP API.
type APIClient struct {
	client  *http.Client
	baseURL string
}

func NewAPIClient(client *http.Client, baseURL string) *APIClient {
	return &APIClient{client: client, baseURL: baseURL}
}

func (c *APIClient) TestConnection() bool {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (c *APIClient) GetMap() (*world.Map, error) {
	var st world.MapState
	if err := c.do(http.MethodGet, "/api/map", nil, &st); err != nil {
		return nil, fmt.Errorf("failed to get map: %w", err)
	}
	return world.FromState(st)
}

func (c *APIClient) ListNPCs() (map[string]actor.State, error) {
	var npcs map[string]actor.State
	if err := c.do(http.MethodGet, "/api/npcs", nil, &npcs); err != nil {
		return nil, fmt.Errorf("failed to list NPCs: %w", err)
	}
	return npcs, nil
}

func (c *APIClient) ValidMoves(p world.Position) ([]world.Position, error) {
	q := url.Values{}
	q.Set("x", strconv.Itoa(p.X))
	q.Set("y", strconv.Itoa(p.Y))

	var resp handlers.ValidMovesResponse
	if err := c.do(http.MethodGet, "/api/map/valid-moves?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get valid moves: %w", err)
	}
	return resp.ValidMoves, nil
}

func (c *APIClient) Move(npcID string, p world.Position) (*actor.State, error) {
	var st actor.State
	if err := c.do(http.MethodPost, npcPath(npcID, "move"), p, &st); err != nil {
		return nil, fmt.Errorf("failed to move %s: %w", npcID, err)
	}
	return &st, nil
}

func (c *APIClient) NextMessage(npcID string) (*actor.Message, error) {
	var msg actor.Message
	if err := c.do(http.MethodGet, npcPath(npcID, "message"), nil, &msg); err != nil {
		return nil, fmt.Errorf("failed to get message from %s: %w", npcID, err)
	}
	return &msg, nil
}

func (c *APIClient) History(npcID string, limit int) (*handlers.HistoryResponse, error) {
	path := npcPath(npcID, "history") + "?limit=" + strconv.Itoa(limit)

	var resp handlers.HistoryResponse
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", npcID, err)
	}
	return &resp, nil
}

func (c *APIClient) Hear(npcID, message string) error {
	var resp handlers.HearResponse
	if err := c.do(http.MethodPost, npcPath(npcID, "hear"), handlers.HearRequest{Message: message}, &resp); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", npcID, err)
	}
	return nil
}

func npcPath(npcID, action string) string {
	return "/api/npc/" + url.PathEscape(npcID) + "/" + action
}

// do sends body as JSON (when non-nil) and decodes a 200 response into out.
// Other statuses are turned into errors carrying the API's error message.
func (c *APIClient) do(method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
