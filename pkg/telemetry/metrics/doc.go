// Package metrics provides Prometheus metrics for export operations.
//
// Metrics:
//   - sqlferry_export_runs_total: exports by format and terminal state
//   - sqlferry_export_rows_total: data rows written, by format
//   - sqlferry_export_duration_seconds: export wall time histogram
//   - sqlferry_export_cost_tokens: token cost histogram for costed exports
//
// The collector registers against its own registry, exposed over HTTP with
// Handler when the metrics listener is enabled:
//
//	collector := metrics.NewCollector(metrics.Config{}, nil)
//	http.Handle("/metrics", collector.Handler())
package metrics
