package preview

import (
	"context"
	"sort"
	"sync"
	"time"
)

// rebuildWorker debounces triggers for one target and runs them one at a time.
type rebuildWorker struct {
	name  string
	delay time.Duration
	run   func(ctx context.Context, changed []string)

	mu      sync.Mutex
	timer   *time.Timer
	changed map[string]struct{}
	closed  bool
	req     chan []string
}

func newRebuildWorker(name string, delay time.Duration, run func(ctx context.Context, changed []string)) *rebuildWorker {
	return &rebuildWorker{
		name:    name,
		delay:   delay,
		run:     run,
		changed: map[string]struct{}{},
		// One slot: a request arriving while a run is in progress waits here,
		// later ones merge into it.
		req: make(chan []string, 1),
	}
}

// trigger records path and restarts the quiet window.
func (w *rebuildWorker) trigger(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.changed[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *rebuildWorker) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || len(w.changed) == 0 {
		return
	}
	batch := make([]string, 0, len(w.changed))
	for p := range w.changed {
		batch = append(batch, p)
	}
	w.changed = map[string]struct{}{}

	select {
	case w.req <- batch:
	default:
		// A follow-up is already queued; fold this batch into it.
		select {
		case queued := <-w.req:
			w.req <- mergePaths(queued, batch)
		default:
			w.req <- batch
		}
	}
}

// start runs the worker loop until ctx is done. wg is released on exit.
func (w *rebuildWorker) start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				w.stop()
				return
			case batch := <-w.req:
				w.run(ctx, batch)
			}
		}
	}()
}

func (w *rebuildWorker) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

func mergePaths(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, p := range a {
		set[p] = struct{}{}
	}
	for _, p := range b {
		set[p] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
