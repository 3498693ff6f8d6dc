package metrics

import (
	"time"

	"mercator-hq/gatekeeper/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ValidationMetrics tracks validation run outcomes.
//
// Metrics:
//   - gatekeeper_engine_runs_total: run count by mode and status
//   - gatekeeper_engine_run_duration_seconds: run duration histogram by mode
//   - gatekeeper_engine_violations_total: violations by source and severity
//   - gatekeeper_engine_skipped_policies_total: semantic skips by reason
//   - gatekeeper_engine_risk_level_total: assessed risk level per run
type ValidationMetrics struct {
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	violations     *prometheus.CounterVec
	skippedTotal   *prometheus.CounterVec
	riskLevelTotal *prometheus.CounterVec
}

// NewValidationMetrics creates and registers validation metrics.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of validation runs",
			},
			[]string{"mode", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"mode"},
		),

		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "violations_total",
				Help:      "Total number of recorded policy violations",
			},
			[]string{"source", "severity"},
		),

		skippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "skipped_policies_total",
				Help:      "Total number of semantic policies skipped",
			},
			[]string{"reason"},
		),

		riskLevelTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "risk_level_total",
				Help:      "Assessed risk level of validated contracts",
			},
			[]string{"level"},
		),
	}

	registry.MustRegister(
		vm.runsTotal,
		vm.runDuration,
		vm.violations,
		vm.skippedTotal,
		vm.riskLevelTotal,
	)

	return vm
}

// RecordRun records one completed validation run.
func (vm *ValidationMetrics) RecordRun(mode, status string, duration time.Duration) {
	vm.runsTotal.WithLabelValues(mode, status).Inc()
	vm.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordViolation records one violation.
func (vm *ValidationMetrics) RecordViolation(source, severity string) {
	vm.violations.WithLabelValues(source, severity).Inc()
}

// RecordSkip records one skipped semantic policy.
func (vm *ValidationMetrics) RecordSkip(reason string) {
	vm.skippedTotal.WithLabelValues(reason).Inc()
}

// RecordRiskLevel records the assessed risk level of a run.
func (vm *ValidationMetrics) RecordRiskLevel(level string) {
	vm.riskLevelTotal.WithLabelValues(level).Inc()
}
