package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// validLogLevels and validLogFormats mirror what the logging package accepts.
var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "text": true}

	validEvidenceBackends = map[string]bool{"sqlite": true, "memory": true}
)

// Validate checks the configuration for values that would fail at runtime.
// It assumes ApplyDefaults has run.
func Validate(cfg *Config) error {
	if cfg.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}

	if err := cfg.Risk.Bands.Validate(); err != nil {
		return fmt.Errorf("risk.bands: %w", err)
	}
	if cfg.Risk.Weights.UndocumentedFieldThreshold < 0 {
		return fmt.Errorf("risk.weights.undocumented_field_threshold must be non-negative")
	}

	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	if !validEvidenceBackends[cfg.Evidence.Backend] {
		return fmt.Errorf("evidence.backend must be one of sqlite, memory; got %q", cfg.Evidence.Backend)
	}
	if cfg.Evidence.Backend == "sqlite" && cfg.Evidence.SQLite.Path == "" {
		return fmt.Errorf("evidence.sqlite.path is required for the sqlite backend")
	}
	if cfg.Evidence.Retention.RetentionDays < 0 {
		return fmt.Errorf("evidence.retention.retention_days must be non-negative")
	}
	if s := cfg.Evidence.Retention.PruneSchedule; s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			return fmt.Errorf("evidence.retention.prune_schedule: %w", err)
		}
	}
	if cfg.Evidence.Retention.ArchiveBeforeDelete && cfg.Evidence.Retention.ArchivePath == "" {
		return fmt.Errorf("evidence.retention.archive_path is required when archive_before_delete is set")
	}

	if !validLogLevels[cfg.Telemetry.Logging.Level] {
		return fmt.Errorf("telemetry.logging.level %q is not a valid level", cfg.Telemetry.Logging.Level)
	}
	if !validLogFormats[cfg.Telemetry.Logging.Format] {
		return fmt.Errorf("telemetry.logging.format %q is not a valid format", cfg.Telemetry.Logging.Format)
	}

	for i, b := range cfg.Telemetry.Metrics.DurationBuckets {
		if b <= 0 {
			return fmt.Errorf("telemetry.metrics.duration_buckets[%d] must be positive", i)
		}
		if i > 0 && b <= cfg.Telemetry.Metrics.DurationBuckets[i-1] {
			return fmt.Errorf("telemetry.metrics.duration_buckets must be strictly increasing")
		}
	}

	return nil
}
