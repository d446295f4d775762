// Package source executes a SQL statement against a configured data source
// and exposes the result set as a lazy sequence of Arrow record batches.
//
// # Batch Sequence
//
// Open runs the query through an Engine and returns a Batches cursor:
//
//	batches, err := source.Open(ctx, source.NewSQLEngine(), conn, query, 100000)
//	if err != nil {
//	    return err
//	}
//	defer batches.Close()
//
//	for {
//	    rec, err := batches.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
//
// The sequence is forward-only, single-pass and finite. Every batch shares
// the result schema established by the first batch. Engines that yield a
// whole materialized table instead of pre-chunked batches are re-chunked
// into records of at most the requested batch size, preserving row order.
//
// # Fault capture
//
// Both the open call and every batch pull run inside a stderrcap scope with
// panic recovery. A failure from the engine, whether an ordinary error or a
// panic raised by native driver code, surfaces as a single *DataSourceError
// carrying the connection vendor and any diagnostic text the driver wrote to
// the process error stream. Failures are terminal; nothing is retried.
package source
