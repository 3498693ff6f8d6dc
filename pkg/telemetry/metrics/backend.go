package metrics

import (
	"time"

	"mercator-hq/gatekeeper/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics tracks reasoning backend calls.
//
// Metrics:
//   - gatekeeper_engine_backend_requests_total: calls by outcome
//   - gatekeeper_engine_backend_request_duration_seconds: call latency
//   - gatekeeper_engine_backend_retries_total: retry attempts
type BackendMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	retriesTotal    prometheus.Counter
}

// NewBackendMetrics creates and registers backend metrics.
func NewBackendMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BackendMetrics {
	bm := &BackendMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_requests_total",
				Help:      "Total reasoning backend calls by outcome",
			},
			[]string{"status"},
		),

		requestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_request_duration_seconds",
				Help:      "Latency of reasoning backend calls in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_retries_total",
				Help:      "Total reasoning backend retry attempts",
			},
		),
	}

	registry.MustRegister(
		bm.requestsTotal,
		bm.requestDuration,
		bm.retriesTotal,
	)

	return bm
}

// RecordCall records one backend call with its outcome
// ("success", "error", "timeout") and latency.
func (bm *BackendMetrics) RecordCall(status string, duration time.Duration) {
	bm.requestsTotal.WithLabelValues(status).Inc()
	bm.requestDuration.Observe(duration.Seconds())
}

// RecordRetry records one retry attempt.
func (bm *BackendMetrics) RecordRetry() {
	bm.retriesTotal.Inc()
}
