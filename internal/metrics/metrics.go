// Package metrics records run results as Prometheus metrics and exports them
// in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// Metric names.
const (
	MetricStepsTotal          = "shopflow_steps_total"
	MetricStepDurationSeconds = "shopflow_step_duration_seconds"
	MetricDeclinesTotal       = "shopflow_business_declines_total"
	MetricFailedSteps         = "shopflow_failed_steps"
)

// Recorder observes steps and declines. It owns a private registry so runs
// never collide with the default one.
type Recorder struct {
	registry *prometheus.Registry

	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	declines *prometheus.CounterVec
	failed   prometheus.Gauge
}

// NewRecorder creates a Recorder with every metric registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStepsTotal,
			Help: "Steps executed, by step name and outcome.",
		}, []string{"step", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricStepDurationSeconds,
			Help:    "Wall-clock duration of each step.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"step"}),
		declines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricDeclinesTotal,
			Help: "HTTP 402 business declines seen by retried operations.",
		}, []string{"operation"}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricFailedSteps,
			Help: "Failed steps in the current run.",
		}),
	}
	r.registry.MustRegister(r.steps, r.duration, r.declines, r.failed)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// StepStarted implements engine.Observer.
func (r *Recorder) StepStarted(int, int, string) {}

// StepFinished implements engine.Observer.
func (r *Recorder) StepFinished(_, _ int, result model.StepResult) {
	r.steps.WithLabelValues(result.Name, string(result.Status)).Inc()
	r.duration.WithLabelValues(result.Name).Observe(result.Duration.Seconds())
	if result.Status == model.StatusFailed {
		r.failed.Inc()
	}
}

// Decline counts a business decline on op.
func (r *Recorder) Decline(op string, _ int) {
	r.declines.WithLabelValues(op).Inc()
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
