package export

import (
	"fmt"
	"strings"
	"time"
)

// Format selects the destination file format.
type Format string

const (
	// FormatCSV writes row-oriented delimited text.
	FormatCSV Format = "csv"
	// FormatParquet writes a columnar binary file.
	FormatParquet Format = "parquet"
)

// DefaultBatchSize is the record batch size used when the request does not
// specify one.
const DefaultBatchSize = 100000

// Request describes one export invocation.
type Request struct {
	// Query is the SQL statement to run, treated as an opaque string.
	Query string

	// Destination is the output file path. The runner assumes exclusive
	// ownership of the path for the duration of the export.
	Destination string

	// Format is the output format.
	Format Format

	// BatchSize is the target record batch size. Zero selects
	// DefaultBatchSize.
	BatchSize int64

	// CostThreshold is the optional token budget for CSV output. Zero
	// disables cost tracking entirely.
	CostThreshold int
}

// validate checks the request shape. Shape errors are returned before any
// file is touched.
func (r *Request) validate() error {
	if r.Destination == "" {
		return &InvalidRequestError{Reason: "destination path is required"}
	}
	if r.Format != FormatCSV && r.Format != FormatParquet {
		return &InvalidRequestError{Reason: fmt.Sprintf("unrecognized output format %q", r.Format)}
	}
	if r.BatchSize < 0 {
		return &InvalidRequestError{Reason: "batch size must be positive"}
	}
	if r.CostThreshold < 0 {
		return &InvalidRequestError{Reason: "cost threshold must not be negative"}
	}
	if strings.TrimSpace(r.Query) == "" {
		return &EmptyQueryError{}
	}
	return nil
}

// Result describes a completed export.
type Result struct {
	// ID identifies this export invocation.
	ID string

	// Format is the output format that was written.
	Format Format

	// Rows is the number of data rows written.
	Rows int64

	// Cost is the accumulated token cost, 0 when cost tracking was off.
	Cost int

	// CostThreshold echoes the request's threshold.
	CostThreshold int

	// CostExceeded reports whether Cost exceeds CostThreshold. Exceeding
	// the threshold is a success annotation, not an error.
	CostExceeded bool

	// Duration is the wall time of the export.
	Duration time.Duration
}

// Summary renders the caller-facing success message.
func (r *Result) Summary() string {
	if r.CostThreshold <= 0 {
		return "OK"
	}
	if r.CostExceeded {
		return fmt.Sprintf("OK (cost %d tokens, exceeds threshold %d)", r.Cost, r.CostThreshold)
	}
	return fmt.Sprintf("OK (cost %d tokens, within threshold %d)", r.Cost, r.CostThreshold)
}
