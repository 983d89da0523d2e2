package companion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix-like environment")
	}
}

// testConfig points the facade at a throwaway backend and a harmless
// launch command.
func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.Server.BaseURL = baseURL
	cfg.Launch.Command = "sleep 5"
	cfg.Launch.FallbackCommand = "sleep 5"
	cfg.Launch.GracePeriod = 100 * time.Millisecond
	cfg.Readiness.PollInterval = 20 * time.Millisecond
	cfg.Readiness.MaxWait = 500 * time.Millisecond
	return cfg
}

func TestFacadeLifecycle(t *testing.T) {
	requireUnix(t)
	// Backend that is never reachable: the occupancy pre-check passes
	// and readiness times out, which is the expected shape when the
	// spawned process is not a real server.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	dead.Close()

	c, err := New(testConfig(dead.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	if c.IsServiceRunning() {
		t.Fatalf("fresh facade should not be running")
	}
	if err := c.StartService(context.Background()); err != nil {
		t.Fatalf("StartService: %v", err)
	}
	if !c.IsServiceRunning() {
		t.Fatalf("IsServiceRunning should be true after start")
	}
	if err := c.StartService(context.Background()); !errors.Is(err, ErrAlreadyManaged) {
		t.Fatalf("expected ErrAlreadyManaged, got %v", err)
	}
	st := c.ServiceStatus()
	if !st.Running || st.PID <= 0 {
		t.Fatalf("bad status: %+v", st)
	}

	c.StopService()
	if c.IsServiceRunning() {
		t.Fatalf("IsServiceRunning should be false after stop")
	}
	c.StopService() // idempotent
}

func TestFacadeStartWithOccupiedPort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	if err := c.StartService(context.Background()); !errors.Is(err, ErrPortOccupied) {
		t.Fatalf("expected ErrPortOccupied, got %v", err)
	}
	if c.IsServiceRunning() {
		t.Fatalf("no child must be spawned when the port is occupied")
	}
}

func TestFacadeHealthAndReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/api/capabilities":
			_, _ = w.Write([]byte(`{"hwaccel":["videotoolbox"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	body, err := c.CheckServerHealth(context.Background())
	if err != nil || body != `{"status":"ok"}` {
		t.Fatalf("health = %q, %v", body, err)
	}
	caps, err := c.GetServerCapabilities(context.Background())
	if err != nil || caps == "" {
		t.Fatalf("capabilities = %q, %v", caps, err)
	}
	ready, err := c.WaitForServerReady(context.Background())
	if err != nil || ready != `{"status":"ok"}` {
		t.Fatalf("ready = %q, %v", ready, err)
	}
}

func TestFacadeReadinessTimeout(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	dead.Close()

	c, err := New(testConfig(dead.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	if _, err := c.WaitForServerReady(context.Background()); !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
}

func TestFacadeNetworkHelpersNeverPanic(t *testing.T) {
	c, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	_ = c.IsOnAccessPointNetwork()
	if ip, err := c.GetLocalIPAddress(); err == nil && ip == "" {
		t.Fatalf("resolved IP should not be empty")
	}
}

func TestFacadeHistoryRecording(t *testing.T) {
	requireUnix(t)
	cfg := testConfig("http://127.0.0.1:1") // nothing listens on port 1
	cfg.History.Enabled = true
	cfg.History.DSN = "sqlite://:memory:"

	c, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.StartService(context.Background()); err != nil {
		t.Fatalf("StartService: %v", err)
	}
	c.Shutdown()
}

func TestRegisterMetrics(t *testing.T) {
	if err := RegisterMetrics(prometheus.NewRegistry()); err != nil {
		t.Fatalf("RegisterMetrics: %v", err)
	}
}
