package source

import "fmt"

// DataSourceError represents a failure of the underlying query engine,
// either when the query is opened or while the batch stream is consumed.
// Message carries the original failure text with any captured native
// diagnostics appended on a new line.
type DataSourceError struct {
	Vendor  string // data-source kind, from the connection descriptor scheme
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source error (%s): %s", e.Vendor, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *DataSourceError) Unwrap() error {
	return e.Cause
}

// FatalNativeFault represents a recovered panic raised from native driver
// code. It is never returned directly; the source boundary folds it into a
// DataSourceError so callers handle both failure shapes uniformly.
type FatalNativeFault struct {
	Value any // the recovered panic value
}

// Error implements the error interface.
func (e *FatalNativeFault) Error() string {
	return fmt.Sprintf("fatal native fault: %v", e.Value)
}

// UnexpectedStreamElementError reports an engine stream element that is
// neither an Arrow record batch nor a whole-result table.
type UnexpectedStreamElementError struct {
	Element any
}

// Error implements the error interface.
func (e *UnexpectedStreamElementError) Error() string {
	return "unexpected result stream element"
}
