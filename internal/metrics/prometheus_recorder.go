package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "uibuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	taskDuration  *prom.HistogramVec
	taskOutcomes  *prom.CounterVec
	stageDuration *prom.HistogramVec
	filesEmitted  *prom.CounterVec
	liveReload    *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		taskDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of task runs",
			Buckets:   prom.DefBuckets,
		}, []string{"task"}),
		taskOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_outcomes_total",
			Help:      "Task runs by outcome",
		}, []string{"task", "result"}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage, summed over the files of one run",
			Buckets:   prom.DefBuckets,
		}, []string{"graph", "stage"}),
		filesEmitted: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_emitted_total",
			Help:      "Files that left a build graph",
		}, []string{"graph"}),
		liveReload: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "livereload_broadcasts_total",
			Help:      "Live reload notifications by kind (css, reload)",
		}, []string{"kind"}),
	}
	reg.MustRegister(pr.taskDuration, pr.taskOutcomes, pr.stageDuration, pr.filesEmitted, pr.liveReload)
	return pr
}

func (p *PrometheusRecorder) ObserveTaskDuration(task string, d time.Duration) {
	if p == nil {
		return
	}
	p.taskDuration.WithLabelValues(task).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTaskOutcome(task string, result ResultLabel) {
	if p == nil {
		return
	}
	p.taskOutcomes.WithLabelValues(task, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveStageDuration(graph, stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(graph, stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddFilesEmitted(graph string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.filesEmitted.WithLabelValues(graph).Add(float64(n))
}

func (p *PrometheusRecorder) IncLiveReload(kind string) {
	if p == nil {
		return
	}
	p.liveReload.WithLabelValues(kind).Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics registered on reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
