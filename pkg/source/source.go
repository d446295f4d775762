package source

import (
	"context"
	"strings"

	"sqlferry/pkg/source/stderrcap"
)

// Open executes the query through the engine and returns the batch sequence.
// The engine call runs inside a fault-capture scope; any failure, including
// a panic from native driver code, comes back as a *DataSourceError carrying
// the connection vendor and captured diagnostic text.
func Open(ctx context.Context, eng Engine, conn, query string, batchSize int64) (*Batches, error) {
	vendor := Vendor(conn)

	var stream Stream
	diag, err := captured(func() error {
		var qerr error
		stream, qerr = eng.Query(ctx, conn, query, batchSize)
		return qerr
	})
	if err != nil {
		msg := err.Error()
		if d := strings.TrimSpace(diag); d != "" {
			msg = msg + "\n" + d
		}
		return nil, &DataSourceError{Vendor: vendor, Message: msg, Cause: err}
	}

	return &Batches{
		vendor:    vendor,
		stream:    stream,
		batchSize: batchSize,
	}, nil
}

// captured runs fn inside a stderr capture scope, converting a panic raised
// by native driver code into a *FatalNativeFault. It returns fn's error (or
// the recovered fault) together with whatever diagnostic text the call wrote
// to the process error stream. If the capture itself cannot be installed,
// fn still runs, without diagnostics.
func captured(fn func() error) (diag string, err error) {
	cap, capErr := stderrcap.Start()

	func() {
		defer func() {
			if p := recover(); p != nil {
				err = &FatalNativeFault{Value: p}
			}
		}()
		err = fn()
	}()

	if capErr == nil {
		diag = cap.Stop()
	}
	return diag, err
}
