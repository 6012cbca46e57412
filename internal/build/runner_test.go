package build

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/wpmoo-org/uibuild/internal/foundation/errors"
	"github.com/wpmoo-org/uibuild/internal/metrics"
)

type outcomeRecorder struct {
	metrics.NoopRecorder
	outcomes map[string]metrics.ResultLabel
}

func (r *outcomeRecorder) IncTaskOutcome(task string, result metrics.ResultLabel) {
	r.outcomes[task] = result
}

func newTestRunner(t *testing.T, buf *bytes.Buffer, rec metrics.Recorder) *Runner {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	return NewRunner(WithOutput(buf), WithRunnerRecorder(rec))
}

func TestRunnerSeriesOrderAndLogs(t *testing.T) {
	var buf bytes.Buffer
	rec := &outcomeRecorder{outcomes: map[string]metrics.ResultLabel{}}
	r := newTestRunner(t, &buf, rec)

	var order []string
	step := func(name string) TaskFunc {
		return func(context.Context) error { order = append(order, name); return nil }
	}
	r.Register("a", step("a"))
	r.Register("b", step("b"))
	r.Series("ab", "a", "b")

	require.NoError(t, r.Run(context.Background(), "ab"))
	assert.Equal(t, []string{"a", "b"}, order)

	out := buf.String()
	assert.Contains(t, out, "Starting 'ab'...")
	assert.Contains(t, out, "Starting 'a'...")
	assert.Contains(t, out, "Finished 'b' after ")
	assert.Contains(t, out, "Finished 'ab' after ")
	assert.Equal(t, metrics.ResultSuccess, rec.outcomes["ab"])

	results := r.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "ab", results[2].Task)
	assert.Equal(t, results[0].BuildID, results[2].BuildID, "a series shares one build id")
	assert.NotEmpty(t, results[0].BuildID)
}

func TestRunnerStopsAtFirstError(t *testing.T) {
	var buf bytes.Buffer
	rec := &outcomeRecorder{outcomes: map[string]metrics.ResultLabel{}}
	r := newTestRunner(t, &buf, rec)

	boom := errors.New("boom")
	ran := false
	r.Register("fail", func(context.Context) error { return boom })
	r.Register("after", func(context.Context) error { ran = true; return nil })
	r.Series("all", "fail", "after")

	err := r.Run(context.Background(), "all")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)
	assert.Contains(t, buf.String(), "'fail' errored after")
	assert.Equal(t, metrics.ResultFailed, rec.outcomes["all"])
	assert.Equal(t, TaskStatusFailed, r.Results()[0].Status)
}

func TestRunnerValidatesNames(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRunner(t, &buf, nil)
	ran := false
	r.Register("ok", func(context.Context) error { ran = true; return nil })
	r.Series("loop", "ok", "loop")

	err := r.Run(context.Background(), "ok", "missing")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	assert.False(t, ran, "nothing runs when a name is unknown")

	err = r.Run(context.Background(), "loop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depends on itself")
}

func TestRunnerCanceled(t *testing.T) {
	var buf bytes.Buffer
	rec := &outcomeRecorder{outcomes: map[string]metrics.ResultLabel{}}
	r := newTestRunner(t, &buf, rec)
	r.Register("slow", func(ctx context.Context) error { return ctx.Err() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Run(ctx, "slow")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, metrics.ResultCanceled, rec.outcomes["slow"])
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		250 * time.Microsecond:  "250 μs",
		12 * time.Millisecond:   "12 ms",
		1500 * time.Microsecond: "1.5 ms",
		2340 * time.Millisecond: "2.34 s",
		90 * time.Second:        "1.5 min",
	}
	for d, want := range tests {
		assert.Equal(t, want, FormatDuration(d), d.String())
	}
}
