package export

import (
	"context"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"sqlferry/pkg/source"
)

// idNameSchema is the (id:int64, name:utf8) schema used across these tests.
var idNameSchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)

// makeIDNameRecord builds a batch on idNameSchema. A nil entry in names
// becomes a null cell.
func makeIDNameRecord(t *testing.T, ids []int64, names []*string) arrow.Record {
	t.Helper()
	bld := array.NewRecordBuilder(memory.DefaultAllocator, idNameSchema)
	defer bld.Release()

	bld.Field(0).(*array.Int64Builder).AppendValues(ids, nil)
	nameBld := bld.Field(1).(*array.StringBuilder)
	for _, n := range names {
		if n == nil {
			nameBld.AppendNull()
		} else {
			nameBld.Append(*n)
		}
	}
	return bld.NewRecord()
}

func strp(s string) *string { return &s }

// fixedStream yields a fixed element slice then errs (io.EOF when nil).
type fixedStream struct {
	elems []any
	err   error
	i     int
}

func (s *fixedStream) Next() (any, error) {
	if s.i >= len(s.elems) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	elem := s.elems[s.i]
	s.i++
	return elem, nil
}

func (s *fixedStream) Close() error { return nil }

// fixedEngine returns a fresh fixedStream per Query call, built from the
// factory so each export run sees an unconsumed sequence.
type fixedEngine struct {
	build   func() *fixedStream
	openErr error
}

func (e *fixedEngine) Query(ctx context.Context, conn, query string, batchSize int64) (source.Stream, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return e.build(), nil
}

// openBatches opens a batch sequence over the given elements.
func openBatches(t *testing.T, elems func() []any, batchSize int64) *source.Batches {
	t.Helper()
	eng := &fixedEngine{build: func() *fixedStream { return &fixedStream{elems: elems()} }}
	batches, err := source.Open(context.Background(), eng, "stub://local", "SELECT 1", batchSize)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return batches
}
