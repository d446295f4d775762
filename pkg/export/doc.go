// Package export implements the streaming export pipeline: it pulls record
// batches from a data source and writes them to a local file as delimited
// text (CSV) or columnar binary (Parquet).
//
// # Orchestration
//
// Runner owns file-level policy for one export:
//
//	runner := export.NewRunner(export.RunnerConfig{Connection: conn})
//	result, err := runner.Run(ctx, export.Request{
//	    Query:       "SELECT * FROM users",
//	    Destination: "/tmp/users.csv",
//	    Format:      export.FormatCSV,
//	})
//
// The destination is pre-cleared before writing, so repeated exports of the
// same query to the same path produce byte-identical files. On any failure
// the partially-written destination is deleted (best effort) before the
// original error is returned; a destination file is never left in a
// half-written, undetectable state.
//
// An empty result set produces a zero-byte file for CSV (the schema is
// unknown without a batch) and a valid empty-schema file for Parquet.
//
// # Cost tracking
//
// CSV exports may carry a token cost model. When a cost threshold is set,
// every emitted line is costed on its exact formatted text and the total is
// reported on the success result; exceeding the threshold annotates the
// result, it never fails the export. With no threshold the cost path is
// skipped entirely.
package export
