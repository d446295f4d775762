// Sqlferry is an MCP server that executes SQL against a configured data
// source and streams the result into CSV or Parquet files.
//
// It exposes a single tool, run_sql, over MCP stdio:
//   - Reads the statement from a SQL file
//   - Streams the result in bounded record batches
//   - Writes CSV (append-safe, costed) or Parquet (single footer)
//   - Deletes half-written destinations on failure
//
// Usage:
//
//	# Start the server with default configuration
//	sqlferry run
//
//	# Start with a custom configuration file
//	sqlferry run --config /etc/sqlferry/config.yaml
//
//	# Validate configuration without starting the server
//	sqlferry run --dry-run
//
//	# Show version information
//	sqlferry version
package main

func main() {
	Execute()
}
