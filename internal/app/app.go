// Package app wires the engine, registry, routers and collaborators into
// the runner and worker entry points.
package app

import (
	"context"
	"fmt"
	"strings"

	"tickd/internal/config"
	"tickd/internal/engine"
	"tickd/internal/eventbus"
	"tickd/internal/invoker"
	"tickd/internal/pidfile"
	"tickd/internal/signals"
	"tickd/internal/task"
	"tickd/internal/watch"
	"tickd/internal/worker"
	"tickd/pkg/logx"
)

type Options struct {
	ConfigPath string
	// Connect overrides the config's connect target when non-empty.
	Connect string
	PIDFile string
}

type App struct {
	opts    Options
	connect string

	cfg  *config.Config
	logs *logx.Service
	log  logx.Logger
}

// New loads and validates the configuration and sets up logging. Any error
// here is fatal/startup: the caller exits non-zero before any task runs.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	connect := strings.TrimSpace(opts.Connect)
	if connect == "" {
		connect = strings.TrimSpace(cfg.Connect)
	}
	if connect == "" {
		return nil, fmt.Errorf("connection target required (set -connect or \"connect\" in %s)", opts.ConfigPath)
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	return &App{
		opts:    opts,
		connect: connect,
		cfg:     cfg,
		logs:    logs,
		log:     log.With(logx.String("comp", "app")),
	}, nil
}

// Run executes the runner until shutdown or a fatal error and returns the
// process exit code.
func (a *App) Run(ctx context.Context) (int, error) {
	defer a.logs.Close()

	// Own cancelable context: canceling after the loop exits is what tears
	// down spawned workers and the signal/watch goroutines.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.opts.PIDFile != "" {
		if err := pidfile.Write(a.opts.PIDFile); err != nil {
			return 1, err
		}
		defer func() {
			if err := pidfile.Remove(a.opts.PIDFile); err != nil {
				a.log.Warn("pidfile cleanup failed", logx.Err(err))
			}
		}()
	}

	bus := eventbus.New()
	loop := engine.New()

	mgr := worker.NewManager(ctx, a.connect, a.cfg.Logging.Level, a.log)
	newInv := func(label string) task.Invoker {
		return invoker.New(a.connect, a.log.With(logx.String("task", label)))
	}

	reg, err := task.NewRegistry(a.cfg.Specs(), bus, loop, newInv, mgr, a.log)
	if err != nil {
		return 1, err
	}

	// Readiness notifications must be wired before the registry starts so
	// they observe the very first init-complete.
	bus.Subscribe(eventbus.InitComplete, notifyHandler{state: notifyReady, log: a.log})
	bus.Subscribe(eventbus.ShutdownRequested, notifyHandler{state: notifyStopping, log: a.log})

	signals.NewRouter(bus, loop, a.log).Start(ctx)

	if a.cfg.WatchConfig {
		w := watch.New(a.opts.ConfigPath, bus, loop, a.log)
		if err := w.Start(ctx); err != nil {
			return 1, err
		}
	}

	a.log.Info("runner starting",
		logx.String("connect", a.connect),
		logx.Int("tasks", len(reg.Tasks())),
	)

	reg.Start()
	reason, err := loop.Run(ctx)

	switch reason {
	case engine.StopFatal:
		a.log.Error("fatal error, exiting", logx.Err(err))
	case engine.StopShutdown:
		a.log.Info("orderly shutdown")
	default:
		a.log.Info("stopping", logx.String("reason", reason.String()))
		err = nil
	}
	return reason.ExitCode(), err
}
