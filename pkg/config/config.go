package config

import (
	"time"

	"mercator-hq/gatekeeper/pkg/evidence/recorder"
	"mercator-hq/gatekeeper/pkg/evidence/retention"
	"mercator-hq/gatekeeper/pkg/evidence/storage"
	"mercator-hq/gatekeeper/pkg/risk"
	"mercator-hq/gatekeeper/pkg/semantic"
	"mercator-hq/gatekeeper/pkg/telemetry/logging"
)

// Config is the root configuration for the validation engine. Sections
// reuse the owning package's yaml-tagged config types so defaults and
// validation live next to the code they tune.
type Config struct {
	// Catalog configures the policy catalog source.
	Catalog CatalogConfig `yaml:"catalog"`

	// Risk configures the risk assessor's weights and bands.
	Risk RiskConfig `yaml:"risk"`

	// Backend configures the reasoning backend HTTP client.
	Backend semantic.ClientConfig `yaml:"backend"`

	// Semantic configures the semantic evaluation pool.
	Semantic semantic.EvaluatorConfig `yaml:"semantic"`

	// Evidence configures evidence recording, storage, and retention.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CatalogConfig configures where the policy catalog is loaded from.
type CatalogConfig struct {
	// Path is the catalog YAML file.
	Path string `yaml:"path"`

	// Watch enables hot reloading when the catalog file changes.
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces rapid file events into one reload.
	// Default: 500ms.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// RiskConfig configures the risk assessor.
type RiskConfig struct {
	// Weights are the per-factor score contributions.
	Weights risk.Weights `yaml:"weights"`

	// Bands map scores to risk levels.
	Bands risk.Bands `yaml:"bands"`
}

// EvidenceConfig configures the evidence subsystem.
type EvidenceConfig struct {
	// Recorder configures the async evidence writer.
	Recorder recorder.Config `yaml:"recorder"`

	// Backend selects the storage backend: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite storage.SQLiteConfig `yaml:"sqlite"`

	// Retention configures scheduled pruning of old records.
	Retention retention.Config `yaml:"retention"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	// Logging configures the slog setup.
	Logging logging.Config `yaml:"logging"`

	// Metrics configures the prometheus collectors.
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig configures the prometheus metric collectors.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "gatekeeper".
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric name subsystem. Default: "engine".
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are the histogram buckets for durations, in seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}
