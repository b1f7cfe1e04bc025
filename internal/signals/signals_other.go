//go:build !unix

package signals

import (
	"os"

	"tickd/internal/eventbus"
)

func watchedSignals() []os.Signal {
	// Best effort: at least support os.Interrupt.
	return []os.Signal{os.Interrupt}
}

// Classify maps a delivered OS signal to its bus signal. Without unix
// signals there is no reinitialize trigger.
func Classify(os.Signal) eventbus.Signal {
	return eventbus.ShutdownRequested
}
