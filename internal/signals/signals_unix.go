//go:build unix

package signals

import (
	"os"
	"syscall"

	"tickd/internal/eventbus"
)

// watchedSignals is the fixed set the router listens for: the
// termination-class signals plus the dedicated reinitialize signal.
func watchedSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGILL,
		syscall.SIGABRT,
		syscall.SIGBUS,
		syscall.SIGSEGV,
		syscall.SIGTERM,
		syscall.SIGWINCH,
		syscall.SIGUSR1,
	}
}

// Classify maps a delivered OS signal to its bus signal: SIGUSR1 re-runs
// initialization, everything else requests shutdown.
func Classify(sig os.Signal) eventbus.Signal {
	if sig == syscall.SIGUSR1 {
		return eventbus.ReinitRequested
	}
	return eventbus.ShutdownRequested
}
