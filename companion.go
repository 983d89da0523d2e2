// Package companion supervises the local GhostStream server process: it
// starts and stops the server, waits for it to answer its health
// endpoint, and answers network-identity questions for the host UI.
package companion

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghoststream/companion/internal/config"
	"github.com/ghoststream/companion/internal/history"
	"github.com/ghoststream/companion/internal/history/factory"
	"github.com/ghoststream/companion/internal/logger"
	"github.com/ghoststream/companion/internal/metrics"
	"github.com/ghoststream/companion/internal/netid"
	"github.com/ghoststream/companion/internal/probe"
	"github.com/ghoststream/companion/internal/readiness"
	"github.com/ghoststream/companion/internal/supervisor"
)

// Re-export core types and errors for external consumers.

type Config = config.Config

type Status = supervisor.Status

var (
	ErrAlreadyManaged = supervisor.ErrAlreadyManaged
	ErrPortOccupied   = supervisor.ErrPortOccupied
	ErrTimedOut       = readiness.ErrTimedOut
	ErrNoRoute        = netid.ErrNoRoute
)

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a TOML config file merged over the defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// NewLogger builds the companion logger from config.
func NewLogger(cfg Config) *slog.Logger { return logger.New(cfg.Log) }

// Companion is the lifecycle facade exposed to the host UI. All methods
// are safe for concurrent use; lifecycle operations serialize on the
// supervisor's handle, probes and network checks are lock-free.
type Companion struct {
	cfg    Config
	logger *slog.Logger
	sup    *supervisor.Supervisor
	probe  *probe.Client
	waiter *readiness.Waiter
	ident  *netid.Identity
	sink   history.Sink
}

// New wires a Companion from config. logger may be nil.
func New(cfg Config, logger *slog.Logger) (*Companion, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := probe.New(cfg.Server.BaseURL, logger)
	c := &Companion{
		cfg:    cfg,
		logger: logger,
		probe:  client,
		sup: supervisor.New(supervisor.Spec{
			Command:         cfg.Launch.Command,
			FallbackCommand: cfg.Launch.FallbackCommand,
			WorkDir:         cfg.Launch.WorkDir,
			GracePeriod:     cfg.Launch.GracePeriod,
		}, client, logger),
		waiter: readiness.New(client, cfg.Readiness.PollInterval, cfg.Readiness.MaxWait, logger),
		ident:  netid.New(cfg.Network.RouteProbeAddr, cfg.AccessPointPrefix()),
	}

	if cfg.History.Enabled {
		sink, err := factory.NewSinkFromDSN(cfg.History.DSN)
		if err != nil {
			return nil, err
		}
		c.sink = sink
	}
	return c, nil
}

// StartService spawns the server if nothing is serving its port yet.
// It returns without waiting for readiness; call WaitForServerReady.
func (c *Companion) StartService(ctx context.Context) error {
	if err := c.sup.Start(ctx); err != nil {
		c.record(history.EventStartFailed, 0, err.Error())
		return err
	}
	c.record(history.EventStart, c.sup.Snapshot().PID, "")
	return nil
}

// StopService terminates the server. It never fails; after it returns
// no handle is tracked.
func (c *Companion) StopService() {
	pid := c.sup.Snapshot().PID
	c.sup.Stop()
	if pid != 0 {
		c.record(history.EventStop, pid, "")
	}
}

// IsServiceRunning reports the supervisor's local bookkeeping.
func (c *Companion) IsServiceRunning() bool { return c.sup.IsRunning() }

// ServiceStatus returns a snapshot of the supervisor's bookkeeping.
func (c *Companion) ServiceStatus() Status { return c.sup.Snapshot() }

// CheckServerHealth probes the health endpoint and returns its body.
func (c *Companion) CheckServerHealth(ctx context.Context) (string, error) {
	return c.probe.Health(ctx)
}

// GetServerCapabilities probes the capabilities endpoint and returns its body.
func (c *Companion) GetServerCapabilities(ctx context.Context) (string, error) {
	return c.probe.Capabilities(ctx)
}

// WaitForServerReady polls the health endpoint until the server answers
// or the configured window is exhausted.
func (c *Companion) WaitForServerReady(ctx context.Context) (string, error) {
	body, err := c.waiter.Wait(ctx)
	if err != nil {
		return "", err
	}
	c.record(history.EventReady, c.sup.Snapshot().PID, body)
	return body, nil
}

// GetLocalIPAddress resolves the host's outward-facing local IP.
func (c *Companion) GetLocalIPAddress() (string, error) {
	addr, err := c.ident.LocalAddress()
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// IsOnAccessPointNetwork reports whether the host sits on the GhostHub
// access-point subnet. Advisory: resolution failures yield false.
func (c *Companion) IsOnAccessPointNetwork() bool {
	return c.ident.OnAccessPointSubnet()
}

// Shutdown stops the server before the companion exits, then releases
// the history sink. Stop errors cannot occur; sink errors are logged.
// This is the quit path: lifecycle control from the UI is
// fire-and-forget, so nothing is returned.
func (c *Companion) Shutdown() {
	c.StopService()
	if c.sink != nil {
		if err := c.sink.Close(); err != nil {
			c.logger.Warn("closing history sink", "error", err)
		}
		c.sink = nil
	}
}

// record sends a lifecycle event to the history sink, if configured.
// Failures are logged, never surfaced: auditing must not affect
// lifecycle behavior.
func (c *Companion) record(t history.EventType, pid int, detail string) {
	if c.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.sink.Send(ctx, history.Event{
		Type:       t,
		OccurredAt: time.Now(),
		PID:        pid,
		Detail:     detail,
	}); err != nil {
		c.logger.Warn("recording lifecycle event", "event", t, "error", err)
	}
}

// Metrics helpers (public facade).

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }
