package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghoststream/companion/internal/history"
)

func TestSinkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sink, err := New(filepath.Join(dir, "events.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	events := []history.Event{
		{Type: history.EventStart, OccurredAt: time.Now(), PID: 4321},
		{Type: history.EventReady, OccurredAt: time.Now(), PID: 4321, Detail: `{"status":"ok"}`},
		{Type: history.EventStop, OccurredAt: time.Now(), PID: 4321},
	}
	for _, e := range events {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("Send(%s): %v", e.Type, err)
		}
	}

	var count int
	if err := sink.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companion_history`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != len(events) {
		t.Fatalf("stored %d events, want %d", count, len(events))
	}
}

func TestNewRejectsEmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestDSNPrefixStripping(t *testing.T) {
	sink, err := New("sqlite://:memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.Send(context.Background(), history.Event{
		Type: history.EventStartFailed, OccurredAt: time.Now(), Detail: "port occupied",
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}
