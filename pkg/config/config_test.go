package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfigFile writes YAML content to a temp file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// TestLoadConfig_Valid tests loading a complete configuration file.
func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfigFile(t, `
source:
  connection: "postgresql://readonly@warehouse.internal:5432/analytics"
  query_timeout: "5m"
export:
  default_batch_size: 50000
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: true
    listen_address: ":9091"
    path: /metrics
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Source.Connection != "postgresql://readonly@warehouse.internal:5432/analytics" {
		t.Errorf("unexpected connection: %q", cfg.Source.Connection)
	}
	if cfg.Export.DefaultBatchSize != 50000 {
		t.Errorf("expected batch size 50000, got %d", cfg.Export.DefaultBatchSize)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.ListenAddress != ":9091" {
		t.Errorf("unexpected metrics config: %+v", cfg.Telemetry.Metrics)
	}
}

// TestLoadConfig_Defaults tests that unset fields receive defaults.
func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
source:
  connection: "sqlite://:memory:"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Export.DefaultBatchSize != DefaultBatchSize {
		t.Errorf("expected default batch size %d, got %d", DefaultBatchSize, cfg.Export.DefaultBatchSize)
	}
	if cfg.Telemetry.Logging.Level != DefaultLogLevel {
		t.Errorf("expected default level %q, got %q", DefaultLogLevel, cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Logging.Format != DefaultLogFormat {
		t.Errorf("expected default format %q, got %q", DefaultLogFormat, cfg.Telemetry.Logging.Format)
	}
	if cfg.Telemetry.Metrics.ListenAddress != DefaultMetricsListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Telemetry.Metrics.ListenAddress)
	}
}

// TestLoadConfig_MissingFile tests the error for a nonexistent path.
func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestLoadConfigWithEnvOverrides tests that environment variables take
// precedence over file values.
func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
source:
  connection: "sqlite://:memory:"
export:
  default_batch_size: 50000
`)

	t.Setenv("SQLFERRY_SOURCE_CONNECTION", "mysql://app@db.internal:3306/reporting")
	t.Setenv("SQLFERRY_EXPORT_DEFAULT_BATCH_SIZE", "25000")
	t.Setenv("SQLFERRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() failed: %v", err)
	}
	if cfg.Source.Connection != "mysql://app@db.internal:3306/reporting" {
		t.Errorf("connection override not applied: %q", cfg.Source.Connection)
	}
	if cfg.Export.DefaultBatchSize != 25000 {
		t.Errorf("batch size override not applied: %d", cfg.Export.DefaultBatchSize)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("level override not applied: %q", cfg.Telemetry.Logging.Level)
	}
}

// TestValidate_ConnectionRules tests the per-vendor connection rules.
func TestValidate_ConnectionRules(t *testing.T) {
	tests := []struct {
		name    string
		conn    string
		wantErr bool
	}{
		{"sqlite memory", "sqlite://:memory:", false},
		{"sqlite existing dir", "sqlite://" + filepath.Join(os.TempDir(), "ferry.db"), false},
		{"sqlite missing dir", "sqlite:///no/such/dir/ferry.db", true},
		{"postgres with host", "postgresql://user@db.internal:5432/app", false},
		{"mysql with host", "mysql://user@db.internal:3306/app", false},
		{"bigquery with project", "bigquery://my-project/dataset", false},
		{"missing scheme", "warehouse.internal:5432/app", true},
		{"unknown vendor", "oracle://db.internal/app", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Source: SourceConfig{Connection: tt.conn}}
			ApplyDefaults(cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error for %q", tt.conn)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error for %q: %v", tt.conn, err)
			}
		})
	}
}

// TestValidate_CollectsAllErrors tests that multiple failures are reported
// together.
func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Source: SourceConfig{Connection: "", QueryTimeout: "soon"},
		Export: ExportConfig{DefaultBatchSize: 0, DefaultCostThreshold: -1},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Level: "loud", Format: "xml"},
		},
	}

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Errors) < 4 {
		t.Errorf("expected at least 4 field errors, got %d: %v", len(verr.Errors), verr)
	}
	if !strings.Contains(err.Error(), "errors:") {
		t.Errorf("multi-error message should enumerate errors: %q", err.Error())
	}
}

// TestValidate_MetricsRules tests metrics validation only applies when
// metrics are enabled.
func TestValidate_MetricsRules(t *testing.T) {
	cfg := &Config{Source: SourceConfig{Connection: "sqlite://:memory:"}}
	ApplyDefaults(cfg)
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Metrics.Path = "metrics"

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Errors) != 1 || verr.Errors[0].Field != "telemetry.metrics.path" {
		t.Errorf("unexpected errors: %v", verr.Errors)
	}

	cfg.Telemetry.Metrics.Path = "/metrics"
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error after fixing path: %v", err)
	}
}
