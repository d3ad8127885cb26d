// Package observability provides the Prometheus-backed metrics
// collector for the benchmark pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/rag-bench/internal/ports"
)

// PrometheusMetrics implements ports.MetricsCollector using Prometheus.
// It exposes batch throughput, retry pressure, gating activity, and
// judge request performance for benchmark runs.
type PrometheusMetrics struct {
	latencyHistogram *prometheus.HistogramVec
	eventCounter     *prometheus.CounterVec
	stateGauge       *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a collector and registers its metrics in
// the given registry. A nil registry uses the global default.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		latencyHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ragbench_operation_duration_seconds",
				Help:    "Execution time of benchmark operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status", "metric", "model"},
		),
		eventCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragbench_events_total",
				Help: "Counts of benchmark events such as batch retries and gated metrics.",
			},
			[]string{"event", "status", "metric", "model"},
		),
		stateGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ragbench_state",
				Help: "Current state values of the benchmark pipeline.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records operation latency in the histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.latencyHistogram.WithLabelValues(
		operation,
		labels["status"],
		labels["metric"],
		labels["model"],
	).Observe(duration.Seconds())
}

// RecordCounter increments the event counter.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	pm.eventCounter.WithLabelValues(
		metric,
		labels["status"],
		labels["metric"],
		labels["model"],
	).Add(value)
}

// RecordGauge sets a pipeline state gauge.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, _ map[string]string) {
	pm.stateGauge.WithLabelValues(metric).Set(value)
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
