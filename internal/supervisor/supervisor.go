// Package supervisor owns the single child-process handle for the
// GhostStream server. Start, Stop and IsRunning serialize on one mutex
// held for the full duration of each operation, including the spawn and
// the kill-and-reap, so concurrent callers never observe an
// inconsistent handle.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/ghoststream/companion/internal/metrics"
)

// Default launch and shutdown settings for the GhostStream server.
const (
	DefaultCommand         = "python3 -m ghoststream"
	DefaultFallbackCommand = "python -m ghoststream"
	DefaultGracePeriod     = 500 * time.Millisecond

	// reapTimeout bounds the post-SIGKILL reap wait. A killed process
	// is reaped almost immediately; this only guards against a stuck
	// kernel wait.
	reapTimeout = 200 * time.Millisecond
)

// OccupancyChecker reports whether something already answers the
// server's health endpoint. Implemented by probe.Client.
type OccupancyChecker interface {
	Occupied(ctx context.Context) bool
}

// Spec describes how to launch the supervised server.
type Spec struct {
	Command         string        // primary launch command
	FallbackCommand string        // tried when the primary fails to spawn
	WorkDir         string        // optional working directory
	GracePeriod     time.Duration // wait after graceful termination before SIGKILL
}

func (s *Spec) withDefaults() Spec {
	out := *s
	if out.Command == "" {
		out.Command = DefaultCommand
	}
	if out.FallbackCommand == "" {
		out.FallbackCommand = DefaultFallbackCommand
	}
	if out.GracePeriod <= 0 {
		out.GracePeriod = DefaultGracePeriod
	}
	return out
}

// Status is a point-in-time snapshot of the supervisor's bookkeeping.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Supervisor manages at most one child server process.
type Supervisor struct {
	spec    Spec
	checker OccupancyChecker
	logger  *slog.Logger

	// guarded by mu; see handle.go
	handle handle
}

// New creates a Supervisor. checker may be nil to skip the pre-spawn
// occupancy probe (tests only; production always passes one).
func New(spec Spec, checker OccupancyChecker, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{spec: spec.withDefaults(), checker: checker, logger: logger}
}

// Start spawns the server. It fails with ErrAlreadyManaged when a handle
// is already tracked, with ErrPortOccupied when the health endpoint
// answers before spawning, and with *SpawnError when both launch
// commands fail. It does not wait for readiness; callers use the
// readiness waiter for that.
func (s *Supervisor) Start(ctx context.Context) error {
	s.handle.mu.Lock()
	defer s.handle.mu.Unlock()

	if s.handle.cmd != nil {
		return ErrAlreadyManaged
	}
	if s.checker != nil && s.checker.Occupied(ctx) {
		metrics.IncStartFailure("port_occupied")
		return ErrPortOccupied
	}

	cmd := buildCommand(s.spec.Command)
	configureCmd(cmd, s.spec.WorkDir)
	if err := cmd.Start(); err != nil {
		primaryErr := err
		cmd = buildCommand(s.spec.FallbackCommand)
		configureCmd(cmd, s.spec.WorkDir)
		if err := cmd.Start(); err != nil {
			metrics.IncStartFailure("spawn_failed")
			return &SpawnError{Primary: primaryErr, Fallback: err}
		}
		s.logger.Warn("primary launch command failed, fallback spawned",
			"primary", s.spec.Command, "fallback", s.spec.FallbackCommand, "error", primaryErr)
	}

	s.handle.set(cmd)
	metrics.IncStart()
	s.logger.Info("server process started", "pid", cmd.Process.Pid, "command", cmd.Path)
	return nil
}

// Stop terminates the tracked child: graceful termination, a fixed grace
// period, then an unconditional force-kill and reap. It never fails the
// caller; the contract is that no handle is tracked afterwards. Without
// a handle it is a no-op.
func (s *Supervisor) Stop() {
	s.handle.mu.Lock()
	defer s.handle.mu.Unlock()

	cmd := s.handle.cmd
	if cmd == nil {
		return
	}
	pid := 0
	if cmd.Process != nil {
		pid = cmd.Process.Pid
	}

	// Reap in a separate goroutine so the grace period stays bounded
	// even when the child ignores the termination signal.
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	terminateGracefully(cmd)
	select {
	case <-done:
	case <-time.After(s.spec.GracePeriod):
		forceKill(cmd)
		select {
		case <-done:
		case <-time.After(reapTimeout):
			// best-effort; a SIGKILLed child reaps on its own
		}
	}

	s.handle.clear()
	metrics.IncStop()
	s.logger.Info("server process stopped", "pid", pid)
}

// IsRunning reports whether a child handle is currently tracked. This is
// local bookkeeping only: a child that exited on its own is still
// reported running until the next Stop. An instance not spawned by this
// supervisor is invisible here but detectable via the health probe.
func (s *Supervisor) IsRunning() bool {
	s.handle.mu.Lock()
	defer s.handle.mu.Unlock()
	return s.handle.cmd != nil
}

// Snapshot returns the current bookkeeping state.
func (s *Supervisor) Snapshot() Status {
	s.handle.mu.Lock()
	defer s.handle.mu.Unlock()
	st := Status{Running: s.handle.cmd != nil, StartedAt: s.handle.startedAt}
	if s.handle.cmd != nil && s.handle.cmd.Process != nil {
		st.PID = s.handle.cmd.Process.Pid
	}
	return st
}
