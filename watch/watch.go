// Package watch is a thin adapter around a single "run once" primitive,
// kept outside the core per spec §9's design note: the driver exposes
// "list of absolute paths last planned" and "run once", and the watcher
// glues fsnotify to them.
package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Runner is the primitive the watcher drives: a full re-plan-and-compile
// pass that returns the set of absolute paths it observed, so the watcher
// can keep its fsnotify subscriptions in sync with the project.
type Runner interface {
	Run(ctx context.Context) (watchedPaths []string, err error)
}

// Watcher coalesces filesystem events during an in-flight re-plan: a
// change arriving mid-run simply re-triggers once the current run
// finishes, rather than queuing multiple overlapping runs.
type Watcher struct {
	runner Runner
	// Errs receives a CompilationError (or any other Run error) after each
	// failed run; the watch loop itself never stops because of one, per
	// spec §5: "Errors during a watched build do not terminate the
	// watcher."
	Errs chan error
}

func New(runner Runner) *Watcher {
	return &Watcher{runner: runner, Errs: make(chan error, 1)}
}

// Start runs once immediately, then watches every path from that run,
// re-running (and re-watching) on change, until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	var (
		running  bool
		pending  bool
		debounce *time.Timer
	)
	const debounceWindow = 150 * time.Millisecond

	// debounceFired is written only by time.AfterFunc callbacks and read
	// only by the loop below, so a buffered channel hand-off is all the
	// synchronization this coalescing needs - no shared flags touched from
	// more than one goroutine.
	debounceFired := make(chan struct{}, 1)
	signalDebounce := func() {
		select {
		case debounceFired <- struct{}{}:
		default:
		}
	}

	runCh := make(chan struct{}, 1)
	triggerRun := func() {
		if running {
			pending = true
			return
		}
		running = true
		select {
		case runCh <- struct{}{}:
		default:
		}
	}

	doRun := func() {
		paths, err := w.runner.Run(ctx)
		running = false
		if err != nil {
			log.Warn().Err(err).Msg("watch: run failed, continuing to watch")
			select {
			case w.Errs <- err:
			default:
			}
		}
		seen := make(map[string]struct{})
		for _, p := range paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			_ = fsw.Add(p)
		}
		if pending {
			pending = false
			triggerRun()
		}
	}

	triggerRun()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-runCh:
			doRun()
		case <-debounceFired:
			triggerRun()
		case ev, ok := <-fsw.Events:
			if !ok {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, signalDebounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				continue
			}
			log.Warn().Err(err).Msg("watch: fsnotify error")
		}
	}
}
