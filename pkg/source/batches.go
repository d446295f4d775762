package source

import (
	"errors"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Batches is a lazy, forward-only, single-pass cursor over the record
// batches of one query execution. It holds an explicit buffered head so a
// caller can peek the first batch (to detect an empty result) and re-attach
// it without losing or duplicating data.
type Batches struct {
	vendor    string
	stream    Stream
	batchSize int64

	// head is a batch re-attached via Prepend, returned before anything
	// else is pulled from the stream.
	head arrow.Record

	// pending holds the remainder of a re-chunked whole-result table.
	pending []arrow.Record

	done   bool
	closed bool
}

// Next returns the next record batch. The caller owns the returned record
// and must Release it. Next returns io.EOF when the sequence is exhausted;
// any other error is terminal and is a *DataSourceError.
func (b *Batches) Next() (arrow.Record, error) {
	if b.head != nil {
		rec := b.head
		b.head = nil
		return rec, nil
	}
	if len(b.pending) > 0 {
		rec := b.pending[0]
		b.pending = b.pending[1:]
		return rec, nil
	}
	if b.done {
		return nil, io.EOF
	}

	var elem any
	diag, err := captured(func() error {
		var serr error
		elem, serr = b.stream.Next()
		return serr
	})
	if err != nil {
		if errors.Is(err, io.EOF) {
			b.done = true
			return nil, io.EOF
		}
		b.done = true
		return nil, b.fail(diag, err)
	}

	switch v := elem.(type) {
	case arrow.Record:
		return v, nil
	case arrow.Table:
		b.pending = rechunk(v, b.batchSize)
		return b.Next()
	default:
		b.done = true
		return nil, b.fail(diag, &UnexpectedStreamElementError{Element: elem})
	}
}

// Prepend re-attaches a batch previously returned by Next so it is yielded
// again before the remaining sequence. Only one batch may be buffered.
func (b *Batches) Prepend(rec arrow.Record) {
	if b.head != nil {
		panic("source: Prepend called with a batch already buffered")
	}
	b.head = rec
}

// Close releases the buffered batches and the underlying stream. It is safe
// to call after a failed Next.
func (b *Batches) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	if b.head != nil {
		b.head.Release()
		b.head = nil
	}
	for _, rec := range b.pending {
		rec.Release()
	}
	b.pending = nil

	return b.stream.Close()
}

// fail wraps a stream failure into a DataSourceError, appending captured
// native diagnostics to the message when present.
func (b *Batches) fail(diag string, err error) error {
	msg := err.Error()
	if d := strings.TrimSpace(diag); d != "" {
		msg = msg + "\n" + d
	}
	return &DataSourceError{Vendor: b.vendor, Message: msg, Cause: err}
}

// rechunk splits a whole-result table into records of at most batchSize
// rows, preserving row order. The table is consumed.
func rechunk(tbl arrow.Table, batchSize int64) []arrow.Record {
	defer tbl.Release()

	tr := array.NewTableReader(tbl, batchSize)
	defer tr.Release()

	var recs []arrow.Record
	for tr.Next() {
		rec := tr.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	return recs
}
