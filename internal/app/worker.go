package app

import (
	"context"
	"os"

	"tickd/internal/engine"
	"tickd/internal/eventbus"
	"tickd/internal/invoker"
	"tickd/internal/signals"
	"tickd/internal/task"
	"tickd/internal/worker"
	"tickd/pkg/logx"
)

// RunWorker hosts one periodic task in an isolated process: an independent
// single-task engine with no initialize or shutdown task, so scheduling
// begins immediately. Logs go to stdout, where the parent re-levels them.
func RunWorker(ctx context.Context, d worker.Descriptor) (int, error) {
	log := logx.NewWriter(os.Stdout, d.LogLevel).With(
		logx.String("comp", "worker"),
		logx.String("task", d.Label),
	)

	bus := eventbus.New()
	loop := engine.New()

	spec := task.Spec{
		Label:     d.Label,
		URL:       d.URL,
		Frequency: task.Every(d.Every()),
	}
	newInv := func(string) task.Invoker {
		return invoker.New(d.Connect, log)
	}
	reg, err := task.NewRegistry([]task.Spec{spec}, bus, loop, newInv, nil, log)
	if err != nil {
		return 1, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	signals.NewRouter(bus, loop, log).Start(ctx)

	log.Info("worker scheduling", logx.Duration("every", d.Every()))
	reg.Start()
	reason, err := loop.Run(ctx)
	if reason == engine.StopFatal {
		return reason.ExitCode(), err
	}
	return reason.ExitCode(), nil
}
