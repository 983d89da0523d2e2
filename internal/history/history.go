// Package history records companion lifecycle events in an external
// audit sink. The supervisor never reads these back; recording is
// observability only and is disabled unless a DSN is configured.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStart       EventType = "start"
	EventStop        EventType = "stop"
	EventReady       EventType = "ready"
	EventStartFailed EventType = "start_failed"
)

// Event is a single lifecycle occurrence.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	PID        int       `json:"pid"`
	Detail     string    `json:"detail,omitempty"`
}

// Sink is a destination for lifecycle events. Implementations must be
// safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
