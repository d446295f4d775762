package config

// Default values applied to fields left unset in the configuration file.
const (
	// DefaultBatchSize is the default number of rows per record batch.
	DefaultBatchSize int64 = 100000

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultMetricsListenAddress is the default metrics bind address.
	DefaultMetricsListenAddress = ":9090"

	// DefaultMetricsPath is the default metrics HTTP path.
	DefaultMetricsPath = "/metrics"
)

// ApplyDefaults fills in default values for any unset configuration fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Export.DefaultBatchSize == 0 {
		cfg.Export.DefaultBatchSize = DefaultBatchSize
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}

	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
