//go:build !linux

package worker

import "os/exec"

// setSysProcAttr is a no-op outside Linux; the spawn context cancel still
// kills the worker on parent exit.
func setSysProcAttr(*exec.Cmd) {}
