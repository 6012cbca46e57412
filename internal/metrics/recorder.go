package metrics

import "time"

// ResultLabel enumerates task outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for tasks, pipeline stages and live reload.
type Recorder interface {
	ObserveTaskDuration(task string, d time.Duration)
	IncTaskOutcome(task string, result ResultLabel)
	ObserveStageDuration(graph, stage string, d time.Duration)
	AddFilesEmitted(graph string, n int)
	IncLiveReload(kind string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTaskDuration(string, time.Duration)          {}
func (NoopRecorder) IncTaskOutcome(string, ResultLabel)                 {}
func (NoopRecorder) ObserveStageDuration(string, string, time.Duration) {}
func (NoopRecorder) AddFilesEmitted(string, int)                        {}
func (NoopRecorder) IncLiveReload(string)                               {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
