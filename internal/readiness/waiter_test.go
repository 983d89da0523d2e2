package readiness

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ghoststream/companion/internal/probe"
)

func TestWaitReturnsImmediatelyWhenReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ready"))
	}))
	defer srv.Close()

	w := New(probe.New(srv.URL, nil), 200*time.Millisecond, 20*time.Second, nil)
	start := time.Now()
	body, err := w.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if body != "ready" {
		t.Fatalf("body = %q", body)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("already-ready wait should not sleep, took %v", elapsed)
	}
}

func TestWaitSucceedsOnceServerComesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 4 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("up"))
	}))
	defer srv.Close()

	w := New(probe.New(srv.URL, nil), 20*time.Millisecond, 5*time.Second, nil)
	body, err := w.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if body != "up" {
		t.Fatalf("body = %q", body)
	}
}

func TestWaitTimesOutAgainstDeadEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	interval := 20 * time.Millisecond
	maxWait := 200 * time.Millisecond
	w := New(probe.New(srv.URL, nil), interval, maxWait, nil)

	start := time.Now()
	_, err := w.Wait(context.Background())
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < maxWait-interval {
		t.Fatalf("timed out too early: %v", elapsed)
	}
	if elapsed > maxWait+2*time.Second {
		t.Fatalf("timed out too late: %v", elapsed)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	w := New(probe.New(srv.URL, nil), 50*time.Millisecond, time.Minute, nil)

	done := make(chan error, 1)
	go func() {
		_, err := w.Wait(ctx)
		done <- err
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Wait did not observe cancellation")
	}
}
