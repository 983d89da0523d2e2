package supervisor

import (
	"os/exec"
	"sync"
	"time"
)

// handle is the single shared mutable resource: the child-process slot.
// All access goes through the supervisor's three operations while mu is
// held; there is no other path to the cmd.
type handle struct {
	mu        sync.Mutex
	cmd       *exec.Cmd
	startedAt time.Time
}

func (h *handle) set(cmd *exec.Cmd) {
	h.cmd = cmd
	h.startedAt = time.Now()
}

func (h *handle) clear() {
	h.cmd = nil
	h.startedAt = time.Time{}
}
