package config

// Config is the root configuration for a sqlferry server.
type Config struct {
	// Source configures the data source every export runs against.
	Source SourceConfig `yaml:"source"`

	// Export configures defaults applied to export requests.
	Export ExportConfig `yaml:"export"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SourceConfig describes the data source connection.
type SourceConfig struct {
	// Connection is the vendor-prefixed connection string, for example
	// "postgresql://user@host:5432/db" or "sqlite:///var/data/app.db".
	Connection string `yaml:"connection"`

	// QueryTimeout bounds a single export's source-side execution, in
	// Go duration syntax ("5m", "1h"). Zero means no timeout.
	QueryTimeout string `yaml:"query_timeout"`
}

// ExportConfig holds defaults for export requests.
type ExportConfig struct {
	// DefaultBatchSize is the batch size used when a request does not
	// specify one.
	DefaultBatchSize int64 `yaml:"default_batch_size"`

	// DefaultCostThreshold is the token-cost threshold used when a
	// request does not specify one. Zero disables cost tracking.
	DefaultCostThreshold int `yaml:"default_cost_threshold"`
}

// TelemetryConfig configures observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	Format string `yaml:"format"`

	// AddSource includes source file and line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics HTTP listener on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics endpoint binds to.
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path the metrics are served on.
	Path string `yaml:"path"`
}
