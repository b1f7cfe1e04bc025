package task

import (
	"fmt"
	"sort"
	"time"

	"tickd/internal/eventbus"
	"tickd/pkg/logx"
)

// InvokerFactory builds one invoker per task. Connections are never shared
// across tasks, so every task gets its own instance.
type InvokerFactory func(label string) Invoker

// Spawner launches a task's recurring cycle in an isolated worker process.
type Spawner interface {
	Spawn(label, url string, every time.Duration) error
}

// Registry builds the full task set from validated specs and owns the
// lifecycle wiring between the initialize, periodic and shutdown phases.
type Registry struct {
	bus *eventbus.Bus
	rt  Runtime
	log logx.Logger

	spawner Spawner

	tasks []*Task
	init  *Task
	shut  *Task
}

// NewRegistry constructs all tasks. At most one initialize and one shutdown
// task are allowed; everything else must be periodic.
func NewRegistry(specs []Spec, bus *eventbus.Bus, rt Runtime, newInvoker InvokerFactory, spawner Spawner, log logx.Logger) (*Registry, error) {
	r := &Registry{bus: bus, rt: rt, spawner: spawner, log: log}

	// Deterministic construction order: initialize first (it runs before any
	// other task is set up), then periodic tasks by label, shutdown last.
	ordered := append([]Spec(nil), specs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := specRank(ordered[i]), specRank(ordered[j])
		if ri != rj {
			return ri < rj
		}
		return ordered[i].Label < ordered[j].Label
	})

	for _, spec := range ordered {
		if spec.Frequency.IsZero() {
			return nil, fmt.Errorf("task %q: missing frequency", spec.Label)
		}
		t := newTask(spec, bus, rt, newInvoker(spec.Label), log)
		switch {
		case t.IsInitialize():
			if r.init != nil {
				return nil, fmt.Errorf("task %q: initialize already defined by %q", t.label, r.init.label)
			}
			r.init = t
		case t.IsShutdown():
			if r.shut != nil {
				return nil, fmt.Errorf("task %q: shutdown already defined by %q", t.label, r.shut.label)
			}
			r.shut = t
		case spec.DedicatedChild && spawner == nil:
			return nil, fmt.Errorf("task %q: dedicated child requested but no spawner available", t.label)
		}
		r.tasks = append(r.tasks, t)
	}
	return r, nil
}

func specRank(s Spec) int {
	switch s.Frequency.Kind() {
	case KindInitialize:
		return 0
	case KindShutdown:
		return 2
	default:
		return 1
	}
}

// Tasks returns the constructed tasks in lifecycle order.
func (r *Registry) Tasks() []*Task { return r.tasks }

// Start wires the lifecycle signals and kicks off the initialize phase.
//
// Must run on the engine loop's goroutine (or before the loop starts): the
// initialize task's first run happens synchronously here, before any
// periodic task can observe init-complete.
func (r *Registry) Start() {
	r.bus.Subscribe(eventbus.TaskSuccess, outcomeHandler{r})
	r.bus.Subscribe(eventbus.TaskFailure, outcomeHandler{r})

	for _, t := range r.tasks {
		if !t.IsPeriodic() {
			continue
		}
		if t.IsDedicated() {
			// Workers get label, url and frequency only: no start delay,
			// no further isolation recursion.
			spec := Spec{Label: t.label, URL: t.target, Frequency: t.freq}
			r.bus.Subscribe(eventbus.InitComplete, &spawnHandler{r: r, spec: spec})
		} else {
			r.bus.Subscribe(eventbus.InitComplete, startHandler{t})
		}
	}

	if r.init != nil {
		r.bus.Subscribe(eventbus.ReinitRequested, rerunHandler{r.init})
	}
	if r.shut != nil {
		r.bus.Subscribe(eventbus.ShutdownRequested, &shutdownHandler{t: r.shut})
	} else {
		// No shutdown task: a termination request exits directly.
		r.bus.Subscribe(eventbus.ShutdownRequested, exitHandler{r.rt})
	}

	if r.init != nil {
		r.log.Info("running initialize task", logx.String("task", r.init.label))
		r.init.Run()
		return
	}
	// Periodic tasks are never blocked by an absent gate.
	r.log.Debug("no initialize task, scheduling begins immediately")
	r.bus.Publish(eventbus.Event{Signal: eventbus.InitComplete})
}

// startHandler begins a periodic task's in-process cycle on init-complete.
type startHandler struct{ t *Task }

func (h startHandler) HandleEvent(eventbus.Event) { h.t.Start() }

// rerunHandler re-runs the initialize task on a reinitialize request.
type rerunHandler struct{ t *Task }

func (h rerunHandler) HandleEvent(eventbus.Event) { h.t.Run() }

// shutdownHandler runs the shutdown task exactly once per process lifetime,
// even though the signal router republishes unconditionally.
type shutdownHandler struct {
	t   *Task
	ran bool
}

func (h *shutdownHandler) HandleEvent(eventbus.Event) {
	if h.ran {
		return
	}
	h.ran = true
	h.t.Run()
}

// exitHandler terminates directly when no shutdown task is configured.
type exitHandler struct{ rt Runtime }

func (h exitHandler) HandleEvent(eventbus.Event) { h.rt.Exit() }

// spawnHandler launches a dedicated-child task's worker on init-complete.
// Spawn failure is fatal: the task must not be silently disabled.
type spawnHandler struct {
	r    *Registry
	spec Spec
	done bool
}

func (h *spawnHandler) HandleEvent(eventbus.Event) {
	if h.done {
		return
	}
	h.done = true
	if err := h.r.spawner.Spawn(h.spec.Label, h.spec.URL, h.spec.Frequency.Interval()); err != nil {
		h.r.rt.Fatal(fmt.Errorf("spawn worker for task %q: %w", h.spec.Label, err))
	}
}

// outcomeHandler routes special-task outcomes: the initialize task's success
// opens the periodic gate; any shutdown task outcome ends the process
// (exit is about shutdown semantics, not about the failure itself).
type outcomeHandler struct{ r *Registry }

func (h outcomeHandler) HandleEvent(e eventbus.Event) {
	out, ok := e.Data.(*Outcome)
	if !ok {
		return
	}
	switch {
	case out.Task.IsInitialize() && e.Signal == eventbus.TaskSuccess:
		h.r.log.Info("initialization complete")
		h.r.bus.Publish(eventbus.Event{Signal: eventbus.InitComplete})
	case out.Task.IsShutdown():
		h.r.log.Info("shutdown task finished, exiting",
			logx.Int("code", out.Code),
		)
		h.r.rt.Exit()
	}
}
