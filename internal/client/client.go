// Package client is a Go client for the agent API server.
package client

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

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// Client calls the agent API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Execute starts a new session.
func (c *Client) Execute(ctx context.Context, req domain.ExecuteRequest) (*domain.ExecuteResponse, error) {
	var resp domain.ExecuteResponse
	if err := c.do(ctx, http.MethodPost, "/execute", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status fetches the full snapshot of a session.
func (c *Client) Status(ctx context.Context, sessionID string) (*domain.StatusResponse, error) {
	var resp domain.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/status/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel requests cancellation of a session.
func (c *Client) Cancel(ctx context.Context, sessionID string) (*domain.CancelResponse, error) {
	var resp domain.CancelResponse
	if err := c.do(ctx, http.MethodPost, "/cancel/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListResponse is the body of GET /sessions.
type ListResponse struct {
	Sessions []domain.SessionSummary `json:"sessions"`
	Count    int                     `json:"count"`
}

// List fetches summaries of all sessions.
func (c *Client) List(ctx context.Context) (*ListResponse, error) {
	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, "/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cleanup removes finished sessions older than maxAgeHours. Zero uses
// the server default.
func (c *Client) Cleanup(ctx context.Context, maxAgeHours float64) (*domain.CleanupResponse, error) {
	var body any
	if maxAgeHours > 0 {
		body = map[string]float64{"max_age_hours": maxAgeHours}
	}
	var resp domain.CleanupResponse
	if err := c.do(ctx, http.MethodPost, "/sessions/cleanup", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
