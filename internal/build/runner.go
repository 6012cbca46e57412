package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	ferrors "github.com/wpmoo-org/uibuild/internal/foundation/errors"
	"github.com/wpmoo-org/uibuild/internal/logfields"
	"github.com/wpmoo-org/uibuild/internal/metrics"
	"github.com/wpmoo-org/uibuild/internal/observability"
)

// TaskFunc is a unit of work the runner can execute by name.
type TaskFunc func(ctx context.Context) error

type task struct {
	fn     TaskFunc
	series []string
}

var (
	timeColor = color.New(color.FgHiBlack)
	nameColor = color.New(color.FgCyan)
	durColor  = color.New(color.FgMagenta)
	failColor = color.New(color.FgRed)
)

// Runner executes registered tasks and composite series.
type Runner struct {
	mu       sync.Mutex
	tasks    map[string]task
	out      io.Writer
	recorder metrics.Recorder
	now      func() time.Time
	results  []TaskResult
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutput sets where progress lines are written. Defaults to stderr.
func WithOutput(w io.Writer) RunnerOption { return func(r *Runner) { r.out = w } }

func WithRunnerRecorder(rec metrics.Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = metrics.OrNoop(rec) }
}

// WithRunnerClock replaces the clock used for timestamps and durations.
func WithRunnerClock(now func() time.Time) RunnerOption { return func(r *Runner) { r.now = now } }

// NewRunner returns a runner with no tasks.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		tasks:    map[string]task{},
		out:      os.Stderr,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewTaskRunner returns a runner with the orchestrator's graphs and the
// build/default series registered.
func NewTaskRunner(o *Orchestrator, opts ...RunnerOption) *Runner {
	r := NewRunner(opts...)
	r.Register(TaskClean, o.Clean)
	r.Register(TaskStyles, o.Styles)
	r.Register(TaskPicoScope, o.PicoScope)
	r.Register(TaskLicenses, o.Licenses)
	r.Series(TaskBuild, TaskClean, TaskStyles, TaskLicenses)
	r.Series(TaskDefault, TaskBuild)
	return r
}

// Register adds or replaces a task.
func (r *Runner) Register(name string, fn TaskFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = task{fn: fn}
}

// Series registers name as the ordered composition of other tasks.
func (r *Runner) Series(name string, names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = task{series: append([]string(nil), names...)}
}

// Tasks returns the registered task names, sorted.
func (r *Runner) Tasks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.tasks))
	for n := range r.tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Results returns every task result recorded so far, in completion order.
func (r *Runner) Results() []TaskResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TaskResult(nil), r.results...)
}

// Run executes names in order and stops at the first failure. Every name is
// checked before anything runs.
func (r *Runner) Run(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = []string{TaskDefault}
	}
	for _, n := range names {
		if err := r.validate(n, nil); err != nil {
			return err
		}
	}
	for _, n := range names {
		runCtx := observability.WithBuildID(ctx, observability.NewBuildID())
		if err := r.runTask(runCtx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) validate(name string, stack []string) error {
	for _, s := range stack {
		if s == name {
			return ferrors.ValidationError(fmt.Sprintf("task %q depends on itself (%s)", name, strings.Join(append(stack, name), " -> "))).
				WithContext("task", name).
				Build()
		}
	}
	r.mu.Lock()
	t, ok := r.tasks[name]
	r.mu.Unlock()
	if !ok {
		return ferrors.ValidationError(fmt.Sprintf("task %q is not defined", name)).
			WithContext("task", name).
			WithContext("available", r.Tasks()).
			Build()
	}
	path := append(append([]string(nil), stack...), name)
	for _, child := range t.series {
		if err := r.validate(child, path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runTask(ctx context.Context, name string) error {
	r.mu.Lock()
	t := r.tasks[name]
	r.mu.Unlock()

	ctx = observability.WithTask(ctx, name)
	start := r.now()
	r.logf("Starting '%s'...", nameColor.Sprint(name))
	observability.DebugContext(ctx, "task started")

	var err error
	if t.series != nil {
		for _, child := range t.series {
			if err = ctx.Err(); err != nil {
				break
			}
			if err = r.runTask(ctx, child); err != nil {
				break
			}
		}
	} else {
		err = t.fn(ctx)
	}

	end := r.now()
	dur := end.Sub(start)
	status := statusFor(err)

	r.recorder.ObserveTaskDuration(name, dur)
	r.recorder.IncTaskOutcome(name, status.label())
	r.mu.Lock()
	r.results = append(r.results, TaskResult{
		Task:      name,
		BuildID:   observability.GetContext(ctx).BuildID,
		Status:    status,
		StartTime: start,
		EndTime:   end,
		Duration:  dur,
		Err:       err,
	})
	r.mu.Unlock()

	if err != nil {
		r.logf("'%s' %s after %s", nameColor.Sprint(name), failColor.Sprint("errored"), durColor.Sprint(FormatDuration(dur)))
		observability.DebugContext(ctx, "task failed", logfields.Duration(dur), logfields.Error(err))
		return err
	}
	r.logf("Finished '%s' after %s", nameColor.Sprint(name), durColor.Sprint(FormatDuration(dur)))
	observability.DebugContext(ctx, "task finished", logfields.Duration(dur))
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	ts := timeColor.Sprint(r.now().Format("15:04:05"))
	_, _ = fmt.Fprintf(r.out, "[%s] %s\n", ts, fmt.Sprintf(format, args...))
}

// FormatDuration renders d the way task runners print elapsed time:
// microseconds, milliseconds, seconds or minutes with at most two decimals.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d μs", d.Microseconds())
	case d < time.Second:
		return trimFloat(float64(d)/float64(time.Millisecond)) + " ms"
	case d < time.Minute:
		return trimFloat(d.Seconds()) + " s"
	default:
		return trimFloat(d.Minutes()) + " min"
	}
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
