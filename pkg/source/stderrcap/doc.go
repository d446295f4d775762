// Package stderrcap provides scoped redirection of the process error stream
// (file descriptor 2) into an in-memory buffer.
//
// Native database drivers (cgo-backed SQLite, vendor client libraries) can
// write diagnostic text directly to fd 2, bypassing Go error values entirely.
// A Capture swaps fd 2 for the write end of a pipe before a native call and
// restores the original descriptor afterwards, making that text available to
// attach to whatever error the call produced.
//
// Usage:
//
//	cap, err := stderrcap.Start()
//	if err == nil {
//	    defer func() { diag := cap.Stop(); ... }()
//	}
//	// native call
//
// A background goroutine drains the pipe for the duration of the capture, so
// a chatty native call can never block on a full pipe buffer. Captures must
// not be nested; the two scopes used during one export (open and iterate)
// never overlap.
package stderrcap
