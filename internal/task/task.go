// Package task implements the scheduling unit and the registry that wires
// tasks to the lifecycle signals.
//
// All task state lives on the engine loop goroutine: timers and HTTP
// responses re-enter through Runtime.Post, so status and the pending timer
// need no locks.
package task

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tickd/internal/eventbus"
	"tickd/pkg/logx"
)

// Runtime is the engine surface tasks need: serialize a callback onto the
// loop, exit orderly, or abort the process.
type Runtime interface {
	Post(fn func())
	Exit()
	Fatal(err error)
}

// Invoker issues one GET to target and reports the HTTP status code.
// A non-nil error means a connection-level failure (not an HTTP failure)
// and is treated as fatal by the caller.
type Invoker interface {
	Get(ctx context.Context, target string) (int, error)
}

// Spec is the validated description a Task is built from.
type Spec struct {
	Label          string
	URL            string
	Frequency      Frequency
	StartDelay     time.Duration
	DedicatedChild bool
}

// Outcome is the Data payload of task-success / task-failure events.
type Outcome struct {
	Task *Task
	Code int
}

// Task is the scheduling unit. Constructed once at startup, never destroyed
// until process exit.
type Task struct {
	label     string
	target    string
	freq      Frequency
	delay     time.Duration
	dedicated bool

	status  Status
	started bool
	// timer holds the next scheduled invocation; owned exclusively by the
	// task. A periodic task keeps exactly one outstanding timer once its
	// cycle begins.
	timer *time.Timer

	bus *eventbus.Bus
	rt  Runtime
	inv Invoker
	log logx.Logger
}

func newTask(spec Spec, bus *eventbus.Bus, rt Runtime, inv Invoker, log logx.Logger) *Task {
	return &Task{
		label:     spec.Label,
		target:    spec.URL,
		freq:      spec.Frequency,
		delay:     spec.StartDelay,
		dedicated: spec.DedicatedChild,
		bus:       bus,
		rt:        rt,
		inv:       inv,
		log:       log.With(logx.String("task", spec.Label)),
	}
}

func (t *Task) Label() string       { return t.label }
func (t *Task) Target() string      { return t.target }
func (t *Task) Frequency() Frequency { return t.freq }
func (t *Task) Status() Status      { return t.status }

func (t *Task) IsInitialize() bool { return t.freq.IsInitialize() }
func (t *Task) IsShutdown() bool   { return t.freq.IsShutdown() }
func (t *Task) IsPeriodic() bool   { return t.freq.IsPeriodic() }

// IsDedicated reports whether this periodic task runs in its own worker
// process instead of the shared engine loop.
func (t *Task) IsDedicated() bool { return t.dedicated }

// Start begins a periodic task's cycle, honoring the start delay. Repeat
// init-complete signals (reinitialize) don't restart a cycle that already
// began; the rearmed timer is the single source of cadence.
func (t *Task) Start() {
	if t.started {
		return
	}
	t.started = true

	if t.delay > 0 {
		if err := t.transition(StatusScheduled); err != nil {
			t.log.Error("start rejected", logx.Err(err))
			return
		}
		t.log.Debug("first run deferred", logx.Duration("delay", t.delay))
		t.arm(t.delay)
		return
	}
	t.Run()
}

// Run is one scheduling tick. A periodic task rearms its timer before
// anything else so the cadence is never lost, then skips execution if the
// previous request is still in flight.
func (t *Task) Run() {
	if t.freq.IsPeriodic() {
		t.started = true
		t.arm(t.freq.Interval())
	}

	if t.status == StatusRunning {
		t.log.Debug("run skipped, previous request still in flight")
		return
	}
	if err := t.transition(StatusRunning); err != nil {
		t.log.Error("run rejected", logx.Err(err))
		return
	}

	t.log.Debug("dispatching request", logx.String("target", t.target))
	go func() {
		code, err := t.inv.Get(context.Background(), t.target)
		t.rt.Post(func() { t.onResponse(code, err) })
	}()
}

func (t *Task) arm(d time.Duration) {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, func() { t.rt.Post(t.Run) })
}

// onResponse runs on the engine loop once the request resolves.
//
// Connection-level errors are fatal: a runner that cannot reach its target
// must not keep scheduling requests against it.
func (t *Task) onResponse(code int, err error) {
	if err != nil {
		t.log.Error("target unreachable", logx.String("target", t.target), logx.Err(err))
		t.rt.Fatal(fmt.Errorf("task %q: %s: %w", t.label, t.target, err))
		return
	}

	if terr := t.transition(StatusScheduled); terr != nil {
		t.log.Error("response rejected", logx.Err(terr))
		return
	}

	out := &Outcome{Task: t, Code: code}
	if code == http.StatusOK {
		t.log.Debug("request succeeded", logx.String("target", t.target))
		t.bus.Publish(eventbus.Event{Signal: eventbus.TaskSuccess, Data: out})
		return
	}
	t.log.Warn("request failed",
		logx.String("target", t.target),
		logx.Int("code", code),
	)
	t.bus.Publish(eventbus.Event{Signal: eventbus.TaskFailure, Data: out})
}
