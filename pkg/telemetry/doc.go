// Package telemetry provides observability for sqlferry.
//
// # Overview
//
// The telemetry package implements structured logging and Prometheus
// metrics for the export pipeline. Logging always writes to stderr by
// default because stdout carries the MCP protocol frames.
//
// # Components
//
//   - logging: structured logging on log/slog
//   - metrics: Prometheus metrics for export outcomes
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//		return err
//	}
//	logger.Info("export complete", "rows", 1500)
//
//	collector := metrics.NewCollector(metrics.Config{}, nil)
//	collector.RecordExport("csv", "done", 1500, 320, time.Second)
package telemetry
