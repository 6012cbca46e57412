package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/logfields"
	"github.com/wpmoo-org/uibuild/internal/metrics"
	"github.com/wpmoo-org/uibuild/internal/observability"
)

// Stage transforms one file. Returning a nil file without an error drops it.
type Stage interface {
	Name() string
	Apply(ctx context.Context, f *asset.File) (*asset.File, error)
}

type stageFunc struct {
	name string
	fn   func(ctx context.Context, f *asset.File) (*asset.File, error)
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Apply(ctx context.Context, f *asset.File) (*asset.File, error) {
	return s.fn(ctx, f)
}

// NewStage adapts fn to the Stage interface.
func NewStage(name string, fn func(ctx context.Context, f *asset.File) (*asset.File, error)) Stage {
	return stageFunc{name: name, fn: fn}
}

// Pipeline is a named, ordered list of stages.
type Pipeline struct {
	name     string
	stages   []Stage
	recorder metrics.Recorder
}

// New builds a pipeline from stages. The order is the execution order.
func New(name string, stages ...Stage) *Pipeline {
	return &Pipeline{name: name, stages: stages, recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder used for stage timings.
func (p *Pipeline) WithRecorder(r metrics.Recorder) *Pipeline {
	p.recorder = metrics.OrNoop(r)
	return p
}

// Name returns the pipeline name used in logs and metrics.
func (p *Pipeline) Name() string { return p.name }

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run pushes files through the stages and returns those that survived every
// stage. The first stage error stops the run.
func (p *Pipeline) Run(ctx context.Context, files []*asset.File) ([]*asset.File, error) {
	out := make([]*asset.File, 0, len(files))
	for _, f := range files {
		res, err := p.runFile(ctx, f)
		if err != nil {
			return out, err
		}
		if res != nil {
			out = append(out, res)
		}
	}
	p.recorder.AddFilesEmitted(p.name, len(out))
	return out, nil
}

func (p *Pipeline) runFile(ctx context.Context, f *asset.File) (*asset.File, error) {
	cur := f
	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t0 := time.Now()
		next, err := st.Apply(observability.WithStage(ctx, st.Name()), cur)
		dur := time.Since(t0)
		p.recorder.ObserveStageDuration(p.name, st.Name(), dur)
		if err != nil {
			observability.DebugContext(ctx, "stage failed",
				logfields.Graph(p.name), logfields.Stage(st.Name()), logfields.Path(cur.Path), logfields.Error(err))
			return nil, err
		}
		if next == nil {
			slog.Debug("file dropped",
				logfields.Graph(p.name), logfields.Stage(st.Name()), logfields.Path(cur.Path))
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}
