//go:build linux

package worker

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr kills the worker when the parent dies, even if the parent
// never got to cancel the spawn context.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}
}
