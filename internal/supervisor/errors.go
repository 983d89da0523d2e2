package supervisor

import (
	"errors"
	"fmt"
)

// ErrAlreadyManaged is returned by Start when this supervisor already
// tracks a child handle.
var ErrAlreadyManaged = errors.New("server is already running")

// ErrPortOccupied is returned by Start when the health endpoint answered
// before spawning, meaning another instance (possibly unmanaged) is
// already serving on the well-known port.
var ErrPortOccupied = errors.New("server is already running on its port")

// SpawnError reports that both the primary and fallback launch commands
// failed to start.
type SpawnError struct {
	Primary  error
	Fallback error
}

func (e *SpawnError) Error() string {
	if e.Fallback != nil {
		return fmt.Sprintf("failed to start server: %v (fallback: %v)", e.Primary, e.Fallback)
	}
	return fmt.Sprintf("failed to start server: %v", e.Primary)
}

func (e *SpawnError) Unwrap() error { return e.Primary }
