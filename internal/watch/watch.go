// Package watch publishes a reinitialize request when the config file
// changes on disk, mirroring what SIGUSR1 does.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"tickd/internal/eventbus"
	"tickd/pkg/logx"
)

// Poster serializes a callback onto the engine loop.
type Poster interface {
	Post(fn func())
}

// Watcher watches one config file. Editors typically emit several write
// events per save (and replace the file, which is why the parent directory
// is watched), so triggers are throttled with a rate limiter.
type Watcher struct {
	path string
	bus  *eventbus.Bus
	rt   Poster
	log  logx.Logger
	lim  *rate.Limiter
}

func New(path string, bus *eventbus.Bus, rt Poster, log logx.Logger) *Watcher {
	return &Watcher{
		path: path,
		bus:  bus,
		rt:   rt,
		log:  log.With(logx.String("comp", "watch"), logx.String("path", path)),
		lim:  rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Start begins watching until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("config watch: %w", err)
	}

	go w.loop(ctx, fw)
	w.log.Debug("config watch started")
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()
	name := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !w.lim.Allow() {
				continue
			}
			w.log.Info("config changed, requesting reinitialize")
			w.rt.Post(func() {
				w.bus.Publish(eventbus.Event{Signal: eventbus.ReinitRequested})
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", logx.Err(err))
		}
	}
}
