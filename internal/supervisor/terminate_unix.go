//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr puts the child in its own process group so that
// termination signals reach the whole tree.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// shellCommand wraps a script in /bin/sh -c.
func shellCommand(script string) *exec.Cmd {
	// #nosec G204 -- launch commands come from the companion's own config
	return exec.Command("/bin/sh", "-c", script)
}

// terminateGracefully sends SIGTERM to the child's process group.
// Best-effort: errors are ignored, the forced kill follows regardless.
func terminateGracefully(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
}

// forceKill sends SIGKILL to the child's process group.
func forceKill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
