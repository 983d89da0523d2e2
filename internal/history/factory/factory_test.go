package factory

import (
	"path/filepath"
	"testing"
)

func TestSQLiteDSNDispatch(t *testing.T) {
	sink, err := NewSinkFromDSN("sqlite://:memory:")
	if err != nil {
		t.Fatalf("sqlite dispatch: %v", err)
	}
	_ = sink.Close()

	path := filepath.Join(t.TempDir(), "events.db")
	sink, err = NewSinkFromDSN(path)
	if err != nil {
		t.Fatalf("bare path should default to sqlite: %v", err)
	}
	_ = sink.Close()
}

func TestEmptyDSNRejected(t *testing.T) {
	if _, err := NewSinkFromDSN("   "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestUnsupportedSchemeRejected(t *testing.T) {
	if _, err := NewSinkFromDSN("redis://localhost:6379"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
