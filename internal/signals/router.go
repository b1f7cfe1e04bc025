// Package signals maps OS process signals onto event bus signals.
package signals

import (
	"context"
	"os"
	"os/signal"

	"tickd/internal/eventbus"
	"tickd/pkg/logx"
)

// Poster serializes a callback onto the engine loop.
type Poster interface {
	Post(fn func())
}

// Router forwards delivered OS signals to the bus. It performs no filtering
// or debouncing: every delivered signal publishes immediately, even if a
// shutdown is already in progress.
type Router struct {
	bus *eventbus.Bus
	rt  Poster
	log logx.Logger
}

func NewRouter(bus *eventbus.Bus, rt Poster, log logx.Logger) *Router {
	return &Router{bus: bus, rt: rt, log: log.With(logx.String("comp", "signals"))}
}

// Start installs the handlers and forwards signals until ctx is canceled.
func (r *Router) Start(ctx context.Context) {
	ch := make(chan os.Signal, 8)
	signal.Notify(ch, watchedSignals()...)
	go r.forward(ctx, ch)
}

func (r *Router) forward(ctx context.Context, ch chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			signal.Stop(ch)
			return
		case sig := <-ch:
			ev := eventbus.Event{Signal: Classify(sig), Data: sig}
			r.log.Info("os signal received",
				logx.String("signal", sig.String()),
				logx.String("publish", string(ev.Signal)),
			)
			r.rt.Post(func() { r.bus.Publish(ev) })
		}
	}
}
