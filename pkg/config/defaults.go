package config

import (
	"time"

	"mercator-hq/gatekeeper/pkg/risk"
)

// ApplyDefaults fills every unset field with its default value. Enabled
// flags are left alone: evidence and metrics are opt-in, and a false in
// the file is indistinguishable from an absent key.
func ApplyDefaults(cfg *Config) {
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "policies/catalog.yaml"
	}
	if cfg.Catalog.DebounceInterval <= 0 {
		cfg.Catalog.DebounceInterval = 500 * time.Millisecond
	}

	if cfg.Risk.Weights == (risk.Weights{}) {
		cfg.Risk.Weights = risk.DefaultWeights()
	}
	if cfg.Risk.Bands == (risk.Bands{}) {
		cfg.Risk.Bands = risk.DefaultBands()
	}

	cfg.Backend.ApplyDefaults()
	cfg.Semantic.ApplyDefaults()

	if cfg.Evidence.Recorder.AsyncBuffer <= 0 {
		cfg.Evidence.Recorder.AsyncBuffer = 1000
	}
	if cfg.Evidence.Recorder.WriteTimeout <= 0 {
		cfg.Evidence.Recorder.WriteTimeout = 5 * time.Second
	}
	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = "sqlite"
	}
	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = "data/evidence.db"
	}
	if cfg.Evidence.SQLite.MaxOpenConns <= 0 {
		cfg.Evidence.SQLite.MaxOpenConns = 10
	}
	if cfg.Evidence.SQLite.MaxIdleConns <= 0 {
		cfg.Evidence.SQLite.MaxIdleConns = 5
	}
	if cfg.Evidence.SQLite.BusyTimeout <= 0 {
		cfg.Evidence.SQLite.BusyTimeout = 5 * time.Second
	}
	if cfg.Evidence.Retention.ArchiveBeforeDelete && cfg.Evidence.Retention.ArchivePath == "" {
		cfg.Evidence.Retention.ArchivePath = "data/archives/"
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}

	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "gatekeeper"
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = "engine"
	}
}
