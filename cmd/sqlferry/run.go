package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"sqlferry/pkg/config"
	"sqlferry/pkg/export"
	"sqlferry/pkg/server"
	"sqlferry/pkg/source"
	"sqlferry/pkg/telemetry/logging"
	"sqlferry/pkg/telemetry/metrics"
)

var runFlags struct {
	connection string
	logLevel   string
	dryRun     bool
	skipProbe  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the sqlferry MCP server",
	Long: `Start the sqlferry MCP server on stdio with the specified configuration.

The server exposes the run_sql tool; MCP protocol frames travel on stdout
and all logging goes to stderr.

Examples:
  # Start with default config
  sqlferry run

  # Start with custom config
  sqlferry run --config /etc/sqlferry/config.yaml

  # Override the data source connection
  sqlferry run --conn "postgresql://readonly@warehouse.internal:5432/analytics"

  # Validate config without starting the server
  sqlferry run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.connection, "conn", "", "override the data source connection string")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.skipProbe, "skip-probe", false, "skip the startup connectivity probe")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.connection != "" {
		cfg.Source.Connection = runFlags.connection
		if verr := config.Validate(cfg); verr != nil {
			return verr
		}
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	// Logging goes to stderr: stdout carries the MCP protocol frames.
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	if !runFlags.skipProbe {
		if err := probeSource(cmd.Context(), cfg.Source.Connection, logger); err != nil {
			return fmt.Errorf("startup probe failed: %w", err)
		}
	}

	// Metrics listener (optional)
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(metrics.Config{}, nil)
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		go func() {
			logger.Info("metrics listener started",
				"address", cfg.Telemetry.Metrics.ListenAddress,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := http.ListenAndServe(cfg.Telemetry.Metrics.ListenAddress, mux); err != nil {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
	}

	runner := export.NewRunner(export.RunnerConfig{
		Connection: cfg.Source.Connection,
		Logger:     logger,
		Metrics:    collector,
	})

	var queryTimeout time.Duration
	if cfg.Source.QueryTimeout != "" {
		// Validated at load time; a parse failure here is a bug.
		queryTimeout, err = time.ParseDuration(cfg.Source.QueryTimeout)
		if err != nil {
			return fmt.Errorf("invalid query timeout: %w", err)
		}
	}

	srv := server.New(server.Config{
		Version:              Version,
		Runner:               runner,
		Logger:               logger,
		DefaultBatchSize:     cfg.Export.DefaultBatchSize,
		DefaultCostThreshold: cfg.Export.DefaultCostThreshold,
		QueryTimeout:         queryTimeout,
	})

	logger.Info("sqlferry server started",
		"version", Version,
		"vendor", source.Vendor(cfg.Source.Connection),
	)
	return srv.ServeStdio()
}

// probeSource verifies connectivity to network-backed sources before
// serving. File-backed and BigQuery sources are skipped: sqlite databases
// may legitimately not exist yet, and a BigQuery probe bills a job.
func probeSource(ctx context.Context, conn string, logger *slog.Logger) error {
	switch source.Vendor(conn) {
	case "postgres", "postgresql", "mysql":
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	eng := source.NewSQLEngine()
	stream, err := eng.Query(ctx, conn, "SELECT 1", 1)
	if err != nil {
		return err
	}
	defer stream.Close()
	if _, err := stream.Next(); err != nil {
		return err
	}

	logger.Debug("startup probe succeeded", "vendor", source.Vendor(conn))
	return nil
}
