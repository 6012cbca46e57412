package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/metrics"
)

type stageRecorder struct {
	metrics.NoopRecorder
	stages []string
	files  int
}

func (r *stageRecorder) ObserveStageDuration(_, stage string, _ time.Duration) {
	r.stages = append(r.stages, stage)
}

func (r *stageRecorder) AddFilesEmitted(_ string, n int) { r.files += n }

func TestPipelineRunsStagesInOrder(t *testing.T) {
	var order []string
	mark := func(name string) Stage {
		return NewStage(name, func(_ context.Context, f *asset.File) (*asset.File, error) {
			order = append(order, name+":"+f.Relative())
			return f, nil
		})
	}
	rec := &stageRecorder{}
	p := New("test", mark("a"), mark("b")).WithRecorder(rec)

	files := []*asset.File{
		asset.NewFile("/src", "/src/one.css", nil),
		asset.NewFile("/src", "/src/two.css", nil),
	}
	out, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, []string{"a:one.css", "b:one.css", "a:two.css", "b:two.css"}, order)
	assert.Equal(t, []string{"a", "b"}, p.Stages())
	assert.Equal(t, []string{"a", "b", "a", "b"}, rec.stages)
	assert.Equal(t, 2, rec.files)
}

func TestPipelineDropAndError(t *testing.T) {
	drop := NewStage("drop", func(_ context.Context, f *asset.File) (*asset.File, error) {
		if f.Relative() == "skip.css" {
			return nil, nil
		}
		return f, nil
	})
	boom := errors.New("boom")
	fail := NewStage("fail", func(_ context.Context, f *asset.File) (*asset.File, error) {
		if f.Relative() == "bad.css" {
			return nil, boom
		}
		return f, nil
	})

	out, err := New("t", drop, fail).Run(context.Background(), []*asset.File{
		asset.NewFile("/s", "/s/skip.css", nil),
		asset.NewFile("/s", "/s/ok.css", nil),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ok.css", out[0].Relative())

	_, err = New("t", drop, fail).Run(context.Background(), []*asset.File{
		asset.NewFile("/s", "/s/bad.css", nil),
	})
	assert.ErrorIs(t, err, boom)
}

func TestPipelineCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	st := NewStage("x", func(_ context.Context, f *asset.File) (*asset.File, error) {
		called = true
		return f, nil
	})
	_, err := New("t", st).Run(ctx, []*asset.File{asset.NewFile("/s", "/s/a.css", nil)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
