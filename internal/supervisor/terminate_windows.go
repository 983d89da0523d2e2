//go:build windows

package supervisor

import "os/exec"

func setSysProcAttr(_ *exec.Cmd) {}

// shellCommand wraps a script in cmd /C.
func shellCommand(script string) *exec.Cmd {
	// #nosec G204 -- launch commands come from the companion's own config
	return exec.Command("cmd", "/C", script)
}

// terminateGracefully is a no-op on Windows; there is no portable
// graceful termination signal. The forced kill that follows the grace
// period handles shutdown.
func terminateGracefully(_ *exec.Cmd) {}

// forceKill terminates the child process.
func forceKill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
