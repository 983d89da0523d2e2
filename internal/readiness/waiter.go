// Package readiness polls the server's health endpoint after a start
// request until it answers or a fixed window is exhausted. It observes
// only the network, never the supervisor's bookkeeping.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ghoststream/companion/internal/metrics"
	"github.com/ghoststream/companion/internal/probe"
)

// Defaults: a 200ms poll keeps detection fast; 100 polls bound the wait
// at 20 seconds.
const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultMaxWait      = 20 * time.Second
)

// ErrTimedOut is returned when the readiness window is exhausted without
// a successful probe.
var ErrTimedOut = errors.New("server failed to start within the configured window")

// Waiter polls a probe client on a fixed interval. It holds no mutable
// state; concurrent waits are independent.
type Waiter struct {
	client       *probe.Client
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *slog.Logger
}

// New creates a Waiter. Zero durations fall back to the defaults.
func New(client *probe.Client, pollInterval, maxWait time.Duration, logger *slog.Logger) *Waiter {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Waiter{client: client, pollInterval: pollInterval, maxWait: maxWait, logger: logger}
}

// Wait probes immediately, then polls until the health endpoint answers
// 2xx, the iteration budget derived from maxWait/pollInterval runs out,
// or ctx is cancelled. Probe failures during polling are silent retries;
// only the final timeout surfaces.
func (w *Waiter) Wait(ctx context.Context) (string, error) {
	start := time.Now()

	body, err := w.client.Probe(ctx, probe.HealthPath, probe.PollTimeout)
	if err == nil {
		w.logger.Info("server ready immediately")
		metrics.ObserveReadinessWait(time.Since(start))
		return body, nil
	}

	attempts := int(w.maxWait / w.pollInterval)
	// Log progress roughly once per second so a caller can see
	// liveness without flooding output.
	perSecond := int(time.Second / w.pollInterval)
	if perSecond < 1 {
		perSecond = 1
	}

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(w.pollInterval):
		}

		body, err := w.client.Probe(ctx, probe.HealthPath, probe.PollTimeout)
		if err == nil {
			elapsed := time.Since(start)
			w.logger.Info("server ready", "elapsed", elapsed.Round(100*time.Millisecond))
			metrics.ObserveReadinessWait(elapsed)
			return body, nil
		}
		if (i+1)%perSecond == 0 {
			w.logger.Info("waiting for server", "elapsed", time.Since(start).Round(100*time.Millisecond))
		}
	}

	metrics.IncReadinessTimeout()
	return "", fmt.Errorf("%w (%s)", ErrTimedOut, w.maxWait)
}
