// Package engine provides the single-goroutine run loop that all task
// logic executes on.
//
// Timer callbacks, HTTP response callbacks and OS signal notifications are
// posted onto the loop, so task state and event-bus dispatch never need
// locks: every mutation happens on the one loop goroutine. Parallelism
// across tasks exists only between processes (see internal/worker).
package engine

import (
	"context"
	"sync"
)

// Loop serializes callbacks onto a single goroutine.
type Loop struct {
	calls chan func()

	quit     chan struct{}
	stopOnce sync.Once
	reason   StopReason
	err      error
}

func New() *Loop {
	return &Loop{
		// Generously buffered: posters are timer and response goroutines,
		// and must not block behind a busy loop.
		calls: make(chan func(), 128),
		quit:  make(chan struct{}),
	}
}

// Post schedules fn to run on the loop goroutine. It may be called from any
// goroutine, including before Run starts (the call is queued). Never call
// Post from the loop itself; loop-confined code just calls directly.
func (l *Loop) Post(fn func()) {
	select {
	case l.calls <- fn:
	case <-l.quit:
		// Stopping; late callbacks are abandoned (no drain guarantee).
	}
}

// Exit requests an orderly stop. Safe to call from loop handlers: the loop
// returns before running the next queued callback.
func (l *Loop) Exit() { l.stop(StopShutdown, nil) }

// Fatal requests an immediate stop with a non-zero exit. The first caller
// wins; later Exit/Fatal calls are ignored.
func (l *Loop) Fatal(err error) { l.stop(StopFatal, err) }

func (l *Loop) stop(r StopReason, err error) {
	l.stopOnce.Do(func() {
		l.reason = r
		l.err = err
		close(l.quit)
	})
}

// Err returns the fatal error, if any, after the loop stopped.
func (l *Loop) Err() error { return l.err }

// Run executes queued callbacks until Exit/Fatal is called or ctx is
// canceled. It returns the stop reason and the fatal error (if any).
func (l *Loop) Run(ctx context.Context) (StopReason, error) {
	for {
		// Stop requests take priority over pending callbacks.
		select {
		case <-l.quit:
			return l.reason, l.err
		case <-ctx.Done():
			l.stop(StopContext, ctx.Err())
			return l.reason, l.err
		default:
		}

		select {
		case <-l.quit:
			return l.reason, l.err
		case <-ctx.Done():
			l.stop(StopContext, ctx.Err())
			return l.reason, l.err
		case fn := <-l.calls:
			fn()
		}
	}
}
