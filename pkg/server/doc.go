// Package server exposes the export pipeline as an MCP tool over stdio.
//
// # Overview
//
// The server registers a single tool, run_sql, that reads a SQL statement
// from a file, executes it against the configured data source, and streams
// the result into a CSV or Parquet file. The MCP protocol frames travel on
// stdout, so all logging goes to stderr.
//
// # Tool contract
//
// run_sql takes:
//
//   - sql_file: path to a file containing the statement to execute
//   - output_path: destination file for the result
//   - output_format: "csv" or "parquet"
//   - batch_size: rows per record batch (optional, default 100000)
//   - cost_threshold: token budget for the result (optional, 0 disables)
//
// A successful run returns a one-line summary. Failures are returned as
// tool errors with the category of the failure (missing file, permission,
// invalid arguments, data source) so the caller can react without parsing
// free text.
package server
