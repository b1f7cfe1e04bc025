package task

import "fmt"

// Status is the per-task run-state guard preventing overlapping invocations.
type Status uint8

const (
	// StatusIdle: constructed, lifecycle not begun.
	StatusIdle Status = iota
	// StatusScheduled: waiting for the pending timer (or the next trigger),
	// no request in flight.
	StatusScheduled
	// StatusRunning: exactly one request in flight.
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusScheduled:
		return "scheduled"
	case StatusRunning:
		return "running"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// legalTransitions encodes the task state machine:
// periodic tasks cycle Idle → Scheduled → Running → Scheduled → ...,
// one-shot tasks go Idle → Running → Scheduled (and may run again on a
// reinitialize request).
var legalTransitions = map[Status][]Status{
	StatusIdle:      {StatusScheduled, StatusRunning},
	StatusScheduled: {StatusRunning},
	StatusRunning:   {StatusScheduled},
}

// transition moves the task to next, rejecting anything outside the state
// machine. All calls happen on the engine loop.
func (t *Task) transition(next Status) error {
	for _, ok := range legalTransitions[t.status] {
		if next == ok {
			t.status = next
			return nil
		}
	}
	return fmt.Errorf("task %q: illegal status transition %s -> %s", t.label, t.status, next)
}
