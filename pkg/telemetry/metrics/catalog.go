package metrics

import (
	"mercator-hq/gatekeeper/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics tracks the policy catalog lifecycle.
//
// Metrics:
//   - gatekeeper_engine_catalog_policies: currently loaded policy count
//   - gatekeeper_engine_catalog_reloads_total: reload attempts by result
type CatalogMetrics struct {
	policies     prometheus.Gauge
	reloadsTotal *prometheus.CounterVec
}

// NewCatalogMetrics creates and registers catalog metrics.
func NewCatalogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CatalogMetrics {
	cm := &CatalogMetrics{
		policies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_policies",
				Help:      "Number of policies in the loaded catalog",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_reloads_total",
				Help:      "Catalog reload attempts by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		cm.policies,
		cm.reloadsTotal,
	)

	return cm
}

// UpdatePolicies updates the loaded policy count.
func (cm *CatalogMetrics) UpdatePolicies(count int) {
	cm.policies.Set(float64(count))
}

// RecordReload records a reload attempt ("success" or "error").
func (cm *CatalogMetrics) RecordReload(result string) {
	cm.reloadsTotal.WithLabelValues(result).Inc()
}
