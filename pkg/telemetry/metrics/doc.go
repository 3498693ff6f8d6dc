// Package metrics provides Prometheus metrics collection for the
// validation engine.
//
// Categories:
//
//   - Validation: run count, duration, violations, skips, risk levels
//   - Backend: reasoning backend calls, latency, retries
//   - Cache: verdict cache hits, misses, and sizes
//   - Catalog: loaded policy count and reload attempts
//
// Usage:
//
//	collector := metrics.NewCollector(cfg, nil)
//	collector.RecordRun("BALANCED", "failed", 1200*time.Millisecond)
//	http.Handle("/metrics", collector.Handler())
package metrics
