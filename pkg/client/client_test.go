package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientAgainstFakeControlServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/status":
			_, _ = w.Write([]byte(`{"running":true,"pid":999}`))
		case "/api/start":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"server is already running"}`))
		case "/api/stop":
			_, _ = w.Write([]byte(`{"ok":true}`))
		case "/api/health":
			_, _ = w.Write([]byte(`{"body":"{\"status\":\"ok\"}"}`))
		case "/api/network/ip":
			_, _ = w.Write([]byte(`{"ip":"192.168.4.10"}`))
		case "/api/network/access-point":
			_, _ = w.Write([]byte(`{"on_access_point":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	ctx := context.Background()

	if !c.IsReachable(ctx) {
		t.Fatalf("fake server should be reachable")
	}
	st, err := c.Status(ctx)
	if err != nil || !st.Running || st.PID != 999 {
		t.Fatalf("status = %+v, %v", st, err)
	}
	if err := c.Start(ctx); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("start should surface the message string, got %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	body, err := c.Health(ctx)
	if err != nil || !strings.Contains(body, "ok") {
		t.Fatalf("health = %q, %v", body, err)
	}
	ip, err := c.LocalIP(ctx)
	if err != nil || ip != "192.168.4.10" {
		t.Fatalf("ip = %q, %v", ip, err)
	}
	on, err := c.OnAccessPoint(ctx)
	if err != nil || !on {
		t.Fatalf("access point = %v, %v", on, err)
	}
}

func TestIsReachableFalseWhenDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	c := New(Config{BaseURL: srv.URL + "/api", Timeout: 500 * time.Millisecond})
	if c.IsReachable(context.Background()) {
		t.Fatalf("closed server must not be reachable")
	}
}

func TestDefaultsApplied(t *testing.T) {
	c := New(Config{})
	if c.baseURL != "http://127.0.0.1:8770/api" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
	if c.client.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", c.client.Timeout)
	}
}
