package export

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// InvalidRequestError represents a malformed export request. The request is
// rejected before any file is touched.
type InvalidRequestError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid export request: %s", e.Reason)
}

// EmptyQueryError reports query text that is blank after trimming.
type EmptyQueryError struct{}

// Error implements the error interface.
func (e *EmptyQueryError) Error() string {
	return "query text is empty or contains only whitespace"
}

// SchemaMismatchError reports record batches of one result set that
// disagree on schema. Columnar output cannot represent it; the export is
// aborted before the mismatching batch is written.
type SchemaMismatchError struct {
	Expected *arrow.Schema
	Got      *arrow.Schema
}

// Error implements the error interface.
func (e *SchemaMismatchError) Error() string {
	return "schema mismatch across record batches"
}
