package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sqlferry/pkg/source"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "source.connection").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSource(&cfg.Source)...)
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateSource validates the data source connection descriptor. The rules
// are vendor-specific: file-backed vendors need a resolvable path, network
// vendors need a host, and BigQuery needs a project.
func validateSource(cfg *SourceConfig) []FieldError {
	var errs []FieldError

	conn := cfg.Connection
	if conn == "" {
		errs = append(errs, FieldError{
			Field:   "source.connection",
			Message: "connection string is required",
		})
		return errs
	}

	vendor := source.Vendor(conn)
	if vendor == "" {
		errs = append(errs, FieldError{
			Field:   "source.connection",
			Message: "connection string must start with a vendor scheme (e.g. postgresql://)",
		})
		return errs
	}
	if !source.SupportedVendor(vendor) {
		errs = append(errs, FieldError{
			Field:   "source.connection",
			Message: fmt.Sprintf("unsupported vendor %q (supported: sqlite, sqlite3, postgresql, mysql, bigquery)", vendor),
		})
		return errs
	}

	switch vendor {
	case "sqlite", "sqlite3":
		path := conn[strings.Index(conn, "://")+3:]
		if path != ":memory:" {
			dir := filepath.Dir(path)
			if _, err := os.Stat(dir); err != nil {
				errs = append(errs, FieldError{
					Field:   "source.connection",
					Message: fmt.Sprintf("sqlite database directory %q does not exist", dir),
				})
			}
		}
	case "bigquery":
		u, err := url.Parse(conn)
		if err != nil || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "source.connection",
				Message: "bigquery connection must name a project (bigquery://project/dataset)",
			})
		}
	default:
		u, err := url.Parse(conn)
		if err != nil || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "source.connection",
				Message: "connection string must include a host",
			})
		}
	}

	if cfg.QueryTimeout != "" {
		if _, err := time.ParseDuration(cfg.QueryTimeout); err != nil {
			errs = append(errs, FieldError{
				Field:   "source.query_timeout",
				Message: fmt.Sprintf("invalid duration %q", cfg.QueryTimeout),
			})
		}
	}

	return errs
}

// validateExport validates export defaults.
func validateExport(cfg *ExportConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultBatchSize < 1 {
		errs = append(errs, FieldError{
			Field:   "export.default_batch_size",
			Message: "default batch size must be at least 1",
		})
	}
	if cfg.DefaultCostThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "export.default_cost_threshold",
			Message: "default cost threshold must not be negative",
		})
	}

	return errs
}

// validateTelemetry validates logging and metrics configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: "listen address is required when metrics are enabled",
			})
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}

	return errs
}
