// Package client provides an HTTP client for the companion's control
// API. The CLI uses it; a tray UI or test harness can too.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Config holds client configuration.
type Config struct {
	BaseURL string        // e.g. "http://127.0.0.1:8770/api"
	Timeout time.Duration // per-request timeout; wait-ready adds the readiness window
	Logger  *slog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8770/api",
		Timeout: 5 * time.Second,
	}
}

// Client talks to a running companion control server.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a control-API client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

// Status mirrors the control API's status payload.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

type bodyResp struct {
	Body string `json:"body"`
}

type errorResp struct {
	Error string `json:"error"`
}

// IsReachable reports whether the companion control server answers.
func (c *Client) IsReachable(ctx context.Context) bool {
	var st Status
	if err := c.get(ctx, "/status", &st); err != nil {
		c.logger.Debug("companion unreachable", "error", err)
		return false
	}
	return true
}

// Start asks the companion to spawn the server.
func (c *Client) Start(ctx context.Context) error {
	return c.post(ctx, "/start", nil)
}

// Stop asks the companion to stop the server.
func (c *Client) Stop(ctx context.Context) error {
	return c.post(ctx, "/stop", nil)
}

// Status fetches the supervisor's bookkeeping snapshot.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.get(ctx, "/status", &st)
	return st, err
}

// Health returns the server's health endpoint body.
func (c *Client) Health(ctx context.Context) (string, error) {
	var r bodyResp
	if err := c.get(ctx, "/health", &r); err != nil {
		return "", err
	}
	return r.Body, nil
}

// Capabilities returns the server's capabilities endpoint body.
func (c *Client) Capabilities(ctx context.Context) (string, error) {
	var r bodyResp
	if err := c.get(ctx, "/capabilities", &r); err != nil {
		return "", err
	}
	return r.Body, nil
}

// WaitReady blocks until the server is ready or the companion's
// readiness window expires. The extra window is added to the client
// timeout so the long poll is not cut short locally.
func (c *Client) WaitReady(ctx context.Context, window time.Duration) (string, error) {
	waiting := &http.Client{Timeout: c.client.Timeout + window}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/wait-ready", nil)
	if err != nil {
		return "", err
	}
	resp, err := waiting.Do(req)
	if err != nil {
		return "", fmt.Errorf("companion not reachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var r bodyResp
	if err := decode(resp, &r); err != nil {
		return "", err
	}
	return r.Body, nil
}

// LocalIP returns the host's outward-facing local IP.
func (c *Client) LocalIP(ctx context.Context) (string, error) {
	var r struct {
		IP string `json:"ip"`
	}
	if err := c.get(ctx, "/network/ip", &r); err != nil {
		return "", err
	}
	return r.IP, nil
}

// OnAccessPoint reports access-point subnet membership.
func (c *Client) OnAccessPoint(ctx context.Context) (bool, error) {
	var r struct {
		OnAccessPoint bool `json:"on_access_point"`
	}
	if err := c.get(ctx, "/network/access-point", &r); err != nil {
		return false, err
	}
	return r.OnAccessPoint, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("companion not reachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

func (c *Client) post(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("companion not reachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResp
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s", e.Error)
		}
		return fmt.Errorf("companion returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(b, out)
}
