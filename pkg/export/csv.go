package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"sqlferry/pkg/source"
	"sqlferry/pkg/tokens"
)

// WriteCSV appends the batch sequence to the destination as delimited text,
// creating the file if absent. The header row is written exactly once per
// file: if the destination already has content the header is assumed
// present and skipped.
//
// When coster is non-nil, every emitted line (header included) is costed on
// its exact formatted text and the total is returned. A nil coster skips
// cost tracking entirely.
//
// Output is flushed batch-by-batch; the whole result is never held in
// memory.
func WriteCSV(header []string, batches *source.Batches, dest string, coster *tokens.Estimator) (rows int64, cost int, err error) {
	f, err := os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open destination: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to stat destination: %w", err)
	}
	headerWritten := st.Size() > 0

	if coster == nil {
		rows, err = writeCSVPlain(f, header, batches, headerWritten)
		return rows, 0, err
	}
	return writeCSVCosted(f, header, batches, headerWritten, coster)
}

// writeCSVPlain is the zero-overhead path used when no cost model is set.
func writeCSVPlain(f *os.File, header []string, batches *source.Batches, headerWritten bool) (int64, error) {
	w := csv.NewWriter(f)

	if !headerWritten {
		if err := w.Write(header); err != nil {
			return 0, fmt.Errorf("failed to write header: %w", err)
		}
	}

	var rows int64
	for {
		rec, err := batches.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}

		for i := 0; i < int(rec.NumRows()); i++ {
			if err := w.Write(rowStrings(rec, i)); err != nil {
				rec.Release()
				return rows, fmt.Errorf("failed to write row: %w", err)
			}
			rows++
		}
		rec.Release()

		w.Flush()
		if err := w.Error(); err != nil {
			return rows, fmt.Errorf("failed to flush batch: %w", err)
		}
	}

	w.Flush()
	return rows, w.Error()
}

// writeCSVCosted serializes each line through a buffer so the exact emitted
// text, delimiters and terminator included, can be costed before it is
// written out.
func writeCSVCosted(f *os.File, header []string, batches *source.Batches, headerWritten bool, coster *tokens.Estimator) (int64, int, error) {
	var (
		line bytes.Buffer
		cost int
	)
	lw := csv.NewWriter(&line)

	writeLine := func(fields []string) error {
		line.Reset()
		if err := lw.Write(fields); err != nil {
			return err
		}
		lw.Flush()
		if err := lw.Error(); err != nil {
			return err
		}
		cost += coster.EstimateLine(line.String())
		_, err := f.Write(line.Bytes())
		return err
	}

	if !headerWritten {
		if err := writeLine(header); err != nil {
			return 0, cost, fmt.Errorf("failed to write header: %w", err)
		}
	}

	var rows int64
	for {
		rec, err := batches.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, cost, err
		}

		for i := 0; i < int(rec.NumRows()); i++ {
			if err := writeLine(rowStrings(rec, i)); err != nil {
				rec.Release()
				return rows, cost, fmt.Errorf("failed to write row: %w", err)
			}
			rows++
		}
		rec.Release()
	}

	return rows, cost, nil
}

// rowStrings renders one record row as text fields in schema order.
func rowStrings(rec arrow.Record, row int) []string {
	fields := make([]string, rec.NumCols())
	for col := 0; col < int(rec.NumCols()); col++ {
		fields[col] = formatCell(rec.Column(col), row)
	}
	return fields
}

// formatCell converts one cell to its canonical text representation. Nulls
// render as the empty field.
func formatCell(col arrow.Array, row int) string {
	if col.IsNull(row) {
		return ""
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(row)
	case *array.LargeString:
		return c.Value(row)
	case *array.Int64:
		return strconv.FormatInt(c.Value(row), 10)
	case *array.Float64:
		return strconv.FormatFloat(c.Value(row), 'g', -1, 64)
	case *array.Boolean:
		return strconv.FormatBool(c.Value(row))
	case *array.Timestamp:
		unit := col.DataType().(*arrow.TimestampType).Unit
		return c.Value(row).ToTime(unit).UTC().Format(time.RFC3339Nano)
	default:
		return col.ValueStr(row)
	}
}
