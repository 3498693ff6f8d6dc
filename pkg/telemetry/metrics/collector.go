package metrics

import (
	"time"

	"mercator-hq/gatekeeper/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector manages all Prometheus metrics for the engine: validation run
// outcomes, reasoning backend calls, verdict cache behavior, and catalog
// reloads. All recording methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validation *ValidationMetrics
	backend    *BackendMetrics
	cache      *CacheMetrics
	catalog    *CatalogMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "gatekeeper"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "engine"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Rule evaluation lands in the low milliseconds; semantic runs are
		// bounded by the backend timeout.
		cfg.DurationBuckets = []float64{0.005, 0.025, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.validation = NewValidationMetrics(cfg, registry)
	c.backend = NewBackendMetrics(cfg, registry)
	c.cache = NewCacheMetrics(cfg, registry)
	c.catalog = NewCatalogMetrics(cfg, registry)

	return c
}

// RecordRun records one completed validation run.
func (c *Collector) RecordRun(mode, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.validation.RecordRun(mode, status, duration)
}

// RecordViolation records one recorded violation by source and severity.
func (c *Collector) RecordViolation(source, severity string) {
	if !c.config.Enabled {
		return
	}
	c.validation.RecordViolation(source, severity)
}

// RecordSkip records one skipped semantic policy by reason.
func (c *Collector) RecordSkip(reason string) {
	if !c.config.Enabled {
		return
	}
	c.validation.RecordSkip(reason)
}

// RecordRiskLevel records the assessed risk level of a run.
func (c *Collector) RecordRiskLevel(level string) {
	if !c.config.Enabled {
		return
	}
	c.validation.RecordRiskLevel(level)
}

// RecordBackendCall records one reasoning backend call by outcome.
func (c *Collector) RecordBackendCall(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.backend.RecordCall(status, duration)
}

// RecordBackendRetry records one backend retry attempt.
func (c *Collector) RecordBackendRetry() {
	if !c.config.Enabled {
		return
	}
	c.backend.RecordRetry()
}

// RecordVerdictCacheHit records a verdict cache hit.
func (c *Collector) RecordVerdictCacheHit() {
	if !c.config.Enabled {
		return
	}
	c.cache.RecordHit("verdict")
}

// RecordVerdictCacheMiss records a verdict cache miss.
func (c *Collector) RecordVerdictCacheMiss() {
	if !c.config.Enabled {
		return
	}
	c.cache.RecordMiss("verdict")
}

// UpdateCacheSize updates the current entry count of a named cache.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.config.Enabled {
		return
	}
	c.cache.UpdateSize(cacheName, size)
}

// UpdateCatalogPolicies updates the loaded policy count gauge.
func (c *Collector) UpdateCatalogPolicies(count int) {
	if !c.config.Enabled {
		return
	}
	c.catalog.UpdatePolicies(count)
}

// RecordCatalogReload records a catalog reload attempt by result
// ("success" or "error").
func (c *Collector) RecordCatalogReload(result string) {
	if !c.config.Enabled {
		return
	}
	c.catalog.RecordReload(result)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
