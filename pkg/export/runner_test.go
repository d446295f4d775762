package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"sqlferry/pkg/source"
)

// newTestRunner builds a runner over a stub engine yielding the given
// elements per run.
func newTestRunner(elems func() []any) *Runner {
	eng := &fixedEngine{build: func() *fixedStream { return &fixedStream{elems: elems()} }}
	return NewRunner(RunnerConfig{Connection: "stub://local", Engine: eng})
}

// TestRunner_InvalidRequest tests that shape errors are rejected before any
// file is touched.
func TestRunner_InvalidRequest(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	runner := newTestRunner(func() []any { return nil })

	tests := []struct {
		name string
		req  Request
		want any
	}{
		{
			name: "missing destination",
			req:  Request{Query: "SELECT 1", Format: FormatCSV},
			want: &InvalidRequestError{},
		},
		{
			name: "unrecognized format",
			req:  Request{Query: "SELECT 1", Destination: dest, Format: Format("xlsx")},
			want: &InvalidRequestError{},
		},
		{
			name: "blank query",
			req:  Request{Query: "   \n\t", Destination: dest, Format: FormatCSV},
			want: &EmptyQueryError{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Run(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			switch tt.want.(type) {
			case *InvalidRequestError:
				var e *InvalidRequestError
				if !errors.As(err, &e) {
					t.Errorf("expected InvalidRequestError, got %v", err)
				}
			case *EmptyQueryError:
				var e *EmptyQueryError
				if !errors.As(err, &e) {
					t.Errorf("expected EmptyQueryError, got %v", err)
				}
			}
			if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
				t.Error("destination must not be touched on shape errors")
			}
		})
	}
}

// TestRunner_EmptyResultCSV tests that an empty result produces a zero-byte
// file with no header.
func TestRunner_EmptyResultCSV(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.csv")
	runner := newTestRunner(func() []any { return nil })

	res, err := runner.Run(context.Background(), Request{
		Query:       "SELECT * FROM empty",
		Destination: dest,
		Format:      FormatCSV,
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Rows != 0 {
		t.Errorf("expected 0 rows, got %d", res.Rows)
	}

	st, serr := os.Stat(dest)
	if serr != nil {
		t.Fatalf("destination missing: %v", serr)
	}
	if st.Size() != 0 {
		t.Errorf("expected zero-byte file, got %d bytes", st.Size())
	}
}

// TestRunner_EmptyResultParquet tests that an empty result produces a valid
// zero-row columnar file.
func TestRunner_EmptyResultParquet(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.parquet")
	runner := newTestRunner(func() []any { return nil })

	if _, err := runner.Run(context.Background(), Request{
		Query:       "SELECT * FROM empty",
		Destination: dest,
		Format:      FormatParquet,
	}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	tbl := readParquet(t, dest)
	defer tbl.Release()
	if tbl.NumRows() != 0 {
		t.Errorf("expected 0 rows, got %d", tbl.NumRows())
	}
}

// TestRunner_PeekDoesNotLoseFirstBatch tests that the emptiness probe
// neither drops nor duplicates the first batch.
func TestRunner_PeekDoesNotLoseFirstBatch(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	runner := newTestRunner(func() []any {
		return []any{
			makeIDNameRecord(t, []int64{1, 2, 3}, []*string{strp("a"), strp("b"), strp("c")}),
			makeIDNameRecord(t, []int64{4, 5}, []*string{strp("d"), strp("e")}),
		}
	})

	res, err := runner.Run(context.Background(), Request{
		Query:       "SELECT id, name FROM users",
		Destination: dest,
		Format:      FormatCSV,
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Rows != 5 {
		t.Errorf("expected 5 rows, got %d", res.Rows)
	}

	data, _ := os.ReadFile(dest)
	want := "id,name\n1,a\n2,b\n3,c\n4,d\n5,e\n"
	if string(data) != want {
		t.Errorf("unexpected output:\n got %q\nwant %q", data, want)
	}
}

// TestRunner_Rerun_Idempotent tests that running the same export twice
// against the same path yields byte-identical output (destination
// pre-clearing, no stale header duplication).
func TestRunner_Rerun_Idempotent(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	runner := newTestRunner(func() []any {
		return []any{makeIDNameRecord(t, []int64{1, 2}, []*string{strp("a"), strp("b")})}
	})
	req := Request{Query: "SELECT id, name FROM users", Destination: dest, Format: FormatCSV}

	if _, err := runner.Run(context.Background(), req); err != nil {
		t.Fatalf("first Run() failed: %v", err)
	}
	firstData, _ := os.ReadFile(dest)

	if _, err := runner.Run(context.Background(), req); err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}
	secondData, _ := os.ReadFile(dest)

	if string(firstData) != string(secondData) {
		t.Errorf("reruns differ:\nfirst  %q\nsecond %q", firstData, secondData)
	}
}

// TestRunner_FailureDeletesDestination tests that a mid-stream failure
// removes the partial output and surfaces the original error.
func TestRunner_FailureDeletesDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	eng := &fixedEngine{build: func() *fixedStream {
		return &fixedStream{
			elems: []any{makeIDNameRecord(t, []int64{1}, []*string{strp("a")})},
			err:   fmt.Errorf("server closed the connection unexpectedly"),
		}
	}}
	runner := NewRunner(RunnerConfig{Connection: "postgresql://db.internal/app", Engine: eng})

	_, err := runner.Run(context.Background(), Request{
		Query:       "SELECT id, name FROM users",
		Destination: dest,
		Format:      FormatCSV,
	})

	var dsErr *source.DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
	if dsErr.Vendor != "postgresql" {
		t.Errorf("expected vendor attribution, got %q", dsErr.Vendor)
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Error("partial destination must be deleted on failure")
	}
}

// TestRunner_OpenFailureDeletesNothing tests cleanup when the source fails
// to open and no destination was created.
func TestRunner_OpenFailureDeletesNothing(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	eng := &fixedEngine{openErr: fmt.Errorf("connection refused")}
	runner := NewRunner(RunnerConfig{Connection: "mysql://db.internal/app", Engine: eng})

	_, err := runner.Run(context.Background(), Request{
		Query:       "SELECT 1",
		Destination: dest,
		Format:      FormatParquet,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Error("destination must not exist after open failure")
	}
}

// TestRunner_CostThreshold tests threshold annotation semantics: exceeding
// the threshold is reported on a success result, and a zero threshold
// performs no cost computation at all.
func TestRunner_CostThreshold(t *testing.T) {
	elems := func() []any {
		return []any{
			makeIDNameRecord(t, []int64{1, 2}, []*string{strp("alphabet"), strp("beta")}),
		}
	}

	t.Run("threshold exceeded annotates success", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.csv")
		runner := newTestRunner(elems)
		res, err := runner.Run(context.Background(), Request{
			Query:         "SELECT id, name FROM users",
			Destination:   dest,
			Format:        FormatCSV,
			CostThreshold: 2,
		})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		if res.Cost <= 2 {
			t.Fatalf("test data should cost more than 2 tokens, got %d", res.Cost)
		}
		if !res.CostExceeded {
			t.Error("expected CostExceeded annotation")
		}
		if got := res.Summary(); got == "OK" {
			t.Errorf("expected annotated summary, got %q", got)
		}
	})

	t.Run("parquet ignores threshold", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.parquet")
		runner := newTestRunner(elems)
		res, err := runner.Run(context.Background(), Request{
			Query:         "SELECT id, name FROM users",
			Destination:   dest,
			Format:        FormatParquet,
			CostThreshold: 2,
		})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		if res.Cost != 0 || res.CostExceeded {
			t.Errorf("columnar export must not be costed: %+v", res)
		}
		if got := res.Summary(); got != "OK" {
			t.Errorf("expected plain OK summary for parquet, got %q", got)
		}
	})

	t.Run("zero threshold skips cost tracking", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.csv")
		runner := newTestRunner(elems)
		res, err := runner.Run(context.Background(), Request{
			Query:       "SELECT id, name FROM users",
			Destination: dest,
			Format:      FormatCSV,
		})
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		if res.Cost != 0 {
			t.Errorf("expected no cost computation, got %d", res.Cost)
		}
		if res.CostExceeded {
			t.Error("CostExceeded must be false without a threshold")
		}
		if got := res.Summary(); got != "OK" {
			t.Errorf("expected plain OK summary, got %q", got)
		}
	})
}

// TestRunner_ParquetExport tests the columnar path end-to-end through the
// orchestrator.
func TestRunner_ParquetExport(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.parquet")
	runner := newTestRunner(func() []any {
		return []any{
			makeIDNameRecord(t, []int64{1, 2, 3}, []*string{strp("a"), strp("b"), strp("c")}),
			makeIDNameRecord(t, []int64{4, 5}, []*string{strp("d"), strp("e")}),
		}
	})

	res, err := runner.Run(context.Background(), Request{
		Query:       "SELECT id, name FROM users",
		Destination: dest,
		Format:      FormatParquet,
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Rows != 5 {
		t.Errorf("expected 5 rows, got %d", res.Rows)
	}

	tbl := readParquet(t, dest)
	defer tbl.Release()
	if tbl.NumRows() != 5 {
		t.Errorf("expected 5 rows read back, got %d", tbl.NumRows())
	}
}

// TestRunner_CreatesParentDirs tests that missing parent directories are
// created.
func TestRunner_CreatesParentDirs(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "deep", "out.csv")
	runner := newTestRunner(func() []any {
		return []any{makeIDNameRecord(t, []int64{1}, []*string{strp("a")})}
	})

	if _, err := runner.Run(context.Background(), Request{
		Query:       "SELECT id, name FROM users",
		Destination: dest,
		Format:      FormatCSV,
	}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("destination missing: %v", err)
	}
}
