package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gatekeeper.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
catalog:
  path: policies/catalog.yaml
backend:
  base_url: http://localhost:8080
`

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Catalog.DebounceInterval != 500*time.Millisecond {
		t.Errorf("DebounceInterval = %v", cfg.Catalog.DebounceInterval)
	}
	if cfg.Risk.Weights.PII != 5 {
		t.Errorf("Weights.PII = %v, want default 5", cfg.Risk.Weights.PII)
	}
	if cfg.Risk.Bands.Critical != 15 {
		t.Errorf("Bands.Critical = %v, want default 15", cfg.Risk.Bands.Critical)
	}
	if cfg.Backend.MaxRetries != 2 {
		t.Errorf("Backend.MaxRetries = %d, want default 2", cfg.Backend.MaxRetries)
	}
	if cfg.Semantic.Workers != 4 {
		t.Errorf("Semantic.Workers = %d, want default 4", cfg.Semantic.Workers)
	}
	if cfg.Evidence.Backend != "sqlite" {
		t.Errorf("Evidence.Backend = %q, want sqlite", cfg.Evidence.Backend)
	}
	if cfg.Evidence.Recorder.AsyncBuffer != 1000 {
		t.Errorf("Recorder.AsyncBuffer = %d", cfg.Evidence.Recorder.AsyncBuffer)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
	if cfg.Telemetry.Metrics.Namespace != "gatekeeper" {
		t.Errorf("Metrics.Namespace = %q", cfg.Telemetry.Metrics.Namespace)
	}
}

func TestLoadConfig_ExplicitValuesWin(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
catalog:
  path: /etc/gatekeeper/catalog.yaml
  watch: true
risk:
  weights:
    pii: 8
    restricted_classification: 4
    confidential_classification: 3
    per_compliance_tag: 2
    undocumented_fields: 2
    undocumented_field_threshold: 2
    missing_retention: 2
  bands:
    medium: 6
    high: 12
    critical: 20
backend:
  base_url: http://reasoner:9090
  timeout: 45s
  max_retries: 1
semantic:
  workers: 8
evidence:
  recorder:
    enabled: true
  backend: memory
telemetry:
  logging:
    level: debug
    format: text
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Catalog.Path != "/etc/gatekeeper/catalog.yaml" || !cfg.Catalog.Watch {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Risk.Weights.PII != 8 {
		t.Errorf("Weights.PII = %v, want 8", cfg.Risk.Weights.PII)
	}
	if cfg.Risk.Bands.High != 12 {
		t.Errorf("Bands.High = %v, want 12", cfg.Risk.Bands.High)
	}
	if cfg.Backend.Timeout != 45*time.Second || cfg.Backend.MaxRetries != 1 {
		t.Errorf("Backend = %+v", cfg.Backend)
	}
	if cfg.Semantic.Workers != 8 {
		t.Errorf("Semantic.Workers = %d", cfg.Semantic.Workers)
	}
	if !cfg.Evidence.Recorder.Enabled || cfg.Evidence.Backend != "memory" {
		t.Errorf("Evidence = %+v", cfg.Evidence)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"missing backend url",
			"catalog:\n  path: catalog.yaml\n",
			"backend.base_url",
		},
		{
			"bad evidence backend",
			minimalConfig + "evidence:\n  backend: postgres\n",
			"evidence.backend",
		},
		{
			"bad log level",
			minimalConfig + "telemetry:\n  logging:\n    level: loud\n",
			"logging.level",
		},
		{
			"bad cron schedule",
			minimalConfig + "evidence:\n  retention:\n    prune_schedule: whenever\n",
			"prune_schedule",
		},
		{
			"non-increasing bands",
			minimalConfig + "risk:\n  bands:\n    medium: 10\n    high: 5\n    critical: 15\n",
			"risk.bands",
		},
		{
			"archive without path",
			minimalConfig + "evidence:\n  retention:\n    archive_before_delete: true\n    archive_path: \"\"\n",
			"archive_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() accepted an invalid configuration")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() succeeded on a missing file")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("GATEKEEPER_BACKEND_BASE_URL", "http://override:7070")
	t.Setenv("GATEKEEPER_BACKEND_TIMEOUT", "90s")
	t.Setenv("GATEKEEPER_EVIDENCE_ENABLED", "true")
	t.Setenv("GATEKEEPER_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("GATEKEEPER_SEMANTIC_WORKERS", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Backend.BaseURL != "http://override:7070" {
		t.Errorf("BaseURL = %q, want the env override", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Backend.Timeout)
	}
	if !cfg.Evidence.Recorder.Enabled {
		t.Error("Recorder.Enabled not overridden")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
	// Malformed numeric override falls back to the file/default value
	if cfg.Semantic.Workers != 4 {
		t.Errorf("Semantic.Workers = %d, want default 4", cfg.Semantic.Workers)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverrideFailsValidation(t *testing.T) {
	t.Setenv("GATEKEEPER_TELEMETRY_LOGGING_LEVEL", "shout")

	if _, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalConfig)); err == nil {
		t.Error("invalid env override passed validation")
	}
}
