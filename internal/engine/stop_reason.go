package engine

// StopReason records why the engine loop exited.
type StopReason int

const (
	StopUnknown StopReason = iota
	// StopShutdown is an orderly exit: the shutdown task finished,
	// or a termination signal arrived with no shutdown task configured.
	StopShutdown
	// StopFatal is an unrecoverable runtime condition, e.g. a
	// connection-level failure reaching the target.
	StopFatal
	// StopContext means the parent context was canceled.
	StopContext
)

func (r StopReason) String() string {
	switch r {
	case StopShutdown:
		return "shutdown"
	case StopFatal:
		return "fatal"
	case StopContext:
		return "context"
	default:
		return "unknown"
	}
}

// ExitCode maps a stop reason to the process exit code.
func (r StopReason) ExitCode() int {
	if r == StopFatal {
		return 1
	}
	return 0
}
