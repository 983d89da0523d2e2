package supervisor

import (
	"os"
	"os/exec"
	"strings"
)

// buildCommand constructs an *exec.Cmd for a launch command string.
// It avoids invoking a shell when not necessary; when shell
// metacharacters are present it falls back to /bin/sh -c (or the
// platform equivalent).
func buildCommand(cmdStr string) *exec.Cmd {
	cmdStr = strings.TrimSpace(cmdStr)
	if cmdStr == "" {
		return shellCommand("exit 0")
	}
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		return shellCommand(cmdStr)
	}
	parts := strings.Fields(cmdStr)
	name := parts[0]
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	// #nosec G204 -- launch commands come from the companion's own config
	return exec.Command(name, args...)
}

// configureCmd applies workdir and stdio policy. Child output is not
// captured; the server manages its own logs.
func configureCmd(cmd *exec.Cmd, workDir string) {
	if workDir != "" {
		cmd.Dir = workDir
	}
	null, _ := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	cmd.Stdout = null
	cmd.Stderr = null
	setSysProcAttr(cmd)
}
