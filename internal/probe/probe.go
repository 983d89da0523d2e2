package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ghoststream/companion/internal/metrics"
)

// Well-known endpoints served by the GhostStream server.
const (
	HealthPath       = "/api/health"
	CapabilitiesPath = "/api/capabilities"
)

// Default per-call timeouts. The occupancy pre-check and the readiness
// polling loop use deliberately short timeouts; general health queries
// tolerate a slower server.
const (
	DefaultTimeout   = 2 * time.Second
	OccupancyTimeout = 500 * time.Millisecond
	PollTimeout      = 200 * time.Millisecond
)

// UnreachableError indicates the server could not be reached at the
// transport level (connection refused, timeout, DNS).
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("server not responding: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// RejectedError indicates the server answered with a non-2xx status.
type RejectedError struct {
	Status int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("server returned status: %d", e.Status)
}

// Client issues bounded-timeout probes against the supervised server's
// loopback HTTP endpoints. It holds no mutable state and is safe for
// concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a probe client for the given base URL, e.g.
// "http://localhost:8765". Timeouts are supplied per call, not here.
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Transport: &http.Transport{}},
		logger:  logger,
	}
}

// BaseURL returns the server base URL this client probes.
func (c *Client) BaseURL() string { return c.baseURL }

// Probe performs a single GET against path with the given timeout.
// It returns the response body on a 2xx status, a *RejectedError on any
// other status, and a *UnreachableError when the server cannot be
// reached at all.
func (c *Client) Probe(ctx context.Context, path string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("build probe request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncProbe(path, "unreachable")
		return "", &UnreachableError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncProbe(path, "rejected")
		return "", &RejectedError{Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncProbe(path, "unreachable")
		return "", fmt.Errorf("read probe response: %w", err)
	}
	metrics.IncProbe(path, "ok")
	return string(body), nil
}

// Health probes the health endpoint with the general-purpose timeout.
func (c *Client) Health(ctx context.Context) (string, error) {
	return c.Probe(ctx, HealthPath, DefaultTimeout)
}

// Capabilities probes the capabilities endpoint with the general-purpose timeout.
func (c *Client) Capabilities(ctx context.Context) (string, error) {
	return c.Probe(ctx, CapabilitiesPath, DefaultTimeout)
}

// Occupied reports whether something is already answering the health
// endpoint. Used as the pre-spawn port check; any answer at all, even a
// rejection, means the port is taken by an HTTP server.
func (c *Client) Occupied(ctx context.Context) bool {
	_, err := c.Probe(ctx, HealthPath, OccupancyTimeout)
	if err == nil {
		return true
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return true
	}
	c.logger.Debug("occupancy probe", "base_url", c.baseURL, "error", err)
	return false
}
