package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies environment variable overrides. Variables follow the naming
// convention GATEKEEPER_SECTION_FIELD (e.g., GATEKEEPER_BACKEND_BASE_URL)
// and always take precedence over the file.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies GATEKEEPER_* environment variable overrides.
// Malformed values are ignored in favor of the file value.
func applyEnvOverrides(cfg *Config) {
	// Catalog
	if val := os.Getenv("GATEKEEPER_CATALOG_PATH"); val != "" {
		cfg.Catalog.Path = val
	}
	if val := os.Getenv("GATEKEEPER_CATALOG_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Catalog.Watch = b
		}
	}

	// Backend
	if val := os.Getenv("GATEKEEPER_BACKEND_BASE_URL"); val != "" {
		cfg.Backend.BaseURL = val
	}
	if val := os.Getenv("GATEKEEPER_BACKEND_MODEL_NAME"); val != "" {
		cfg.Backend.ModelName = val
	}
	if val := os.Getenv("GATEKEEPER_BACKEND_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Backend.Timeout = d
		}
	}
	if val := os.Getenv("GATEKEEPER_BACKEND_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Backend.MaxRetries = i
		}
	}

	// Semantic pool
	if val := os.Getenv("GATEKEEPER_SEMANTIC_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Semantic.Workers = i
		}
	}
	if val := os.Getenv("GATEKEEPER_SEMANTIC_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Semantic.CacheTTL = d
		}
	}

	// Evidence
	if val := os.Getenv("GATEKEEPER_EVIDENCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evidence.Recorder.Enabled = b
		}
	}
	if val := os.Getenv("GATEKEEPER_EVIDENCE_BACKEND"); val != "" {
		cfg.Evidence.Backend = val
	}
	if val := os.Getenv("GATEKEEPER_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLite.Path = val
	}
	if val := os.Getenv("GATEKEEPER_EVIDENCE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Evidence.Retention.RetentionDays = i
		}
	}

	// Telemetry
	if val := os.Getenv("GATEKEEPER_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GATEKEEPER_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GATEKEEPER_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
