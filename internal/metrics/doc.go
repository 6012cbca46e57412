// Package metrics provides build observability for uibuild.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default, so one-shot CLI builds pay nothing; the serve command swaps in
// a PrometheusRecorder and exposes it on /metrics:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	runner := build.NewTaskRunner(orch, build.WithRunnerRecorder(recorder))
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
