package eventbus

import "time"

// Signal names the lifecycle events exchanged between the registry, tasks
// and the OS-facing routers.
type Signal string

const (
	// InitComplete fires once the initialize task succeeded, or immediately
	// at startup when no initialize task is configured. Periodic tasks begin
	// their cycle on this signal.
	InitComplete Signal = "init-complete"

	// TaskSuccess and TaskFailure carry a task outcome (Data is the
	// publisher's outcome value, typically *task.Outcome).
	TaskSuccess Signal = "task-success"
	TaskFailure Signal = "task-failure"

	// ShutdownRequested asks the process to wind down. The shutdown task
	// (if any) runs once on this signal; otherwise the engine exits directly.
	ShutdownRequested Signal = "shutdown-requested"

	// ReinitRequested re-runs the initialize task without a restart.
	ReinitRequested Signal = "reinit-requested"
)

// Event is a lightweight, in-memory signal used to decouple components.
//
// Data should be small; outcome events carry the task and response metadata.
type Event struct {
	Signal Signal
	Time   time.Time
	Data   any
}

// Handler receives events for the signals it subscribed to.
//
// Handlers are stable objects registered once at wiring time. Registering a
// struct (rather than a closure created in a loop) keeps each subscription's
// captured state explicit.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Event)

func (f HandlerFunc) HandleEvent(e Event) { f(e) }

// Bus is a synchronous publish/subscribe dispatcher.
//
// Contract:
//   - Publish invokes every handler subscribed to the event's signal, in
//     registration order, in the caller's goroutine. No queuing.
//   - All Subscribe and Publish calls must happen either during single-goroutine
//     wiring at startup or on the engine loop. The bus takes no locks.
//
// The bus lives for the whole process; there is no teardown.
type Bus struct {
	handlers map[Signal][]Handler
}

func New() *Bus {
	return &Bus{handlers: map[Signal][]Handler{}}
}

// Subscribe registers h for signal s. A handler may be subscribed to several
// signals; it is invoked once per matching publish.
func (b *Bus) Subscribe(s Signal, h Handler) {
	b.handlers[s] = append(b.handlers[s], h)
}

// Publish delivers e to all handlers of e.Signal synchronously.
// Handlers registered while a publish is in flight are not invoked for it.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Snapshot so a handler subscribing mid-publish doesn't grow the slice
	// under our feet.
	hs := b.handlers[e.Signal]
	for _, h := range hs[:len(hs):len(hs)] {
		h.HandleEvent(e)
	}
}
