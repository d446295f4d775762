package export

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"sqlferry/pkg/source"
)

// WriteParquet writes the batch sequence to the destination as a single
// Parquet file, one row group per batch. The file writer is initialized
// lazily from the first batch's schema; every subsequent batch must share
// it, otherwise the export aborts with a *SchemaMismatchError before that
// batch is written.
//
// The file footer is finalized on both success and failure paths. A Parquet
// file without its trailer is unreadable, so a mismatch mid-export leaves
// the already-committed row groups behind a valid footer (the orchestrator
// then deletes the file).
func WriteParquet(batches *source.Batches, dest string) (rows int64, err error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination: %w", err)
	}

	var (
		fw     *pqarrow.FileWriter
		schema *arrow.Schema
	)
	defer func() {
		if fw != nil {
			if cerr := fw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to finalize parquet file: %w", cerr)
			}
		}
		f.Close()
	}()

	for {
		rec, nerr := batches.Next()
		if errors.Is(nerr, io.EOF) {
			break
		}
		if nerr != nil {
			return rows, nerr
		}

		if fw == nil {
			schema = rec.Schema()
			fw, err = pqarrow.NewFileWriter(schema, f, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
			if err != nil {
				rec.Release()
				return rows, fmt.Errorf("failed to initialize parquet writer: %w", err)
			}
		} else if !schema.Equal(rec.Schema()) {
			mismatch := &SchemaMismatchError{Expected: schema, Got: rec.Schema()}
			rec.Release()
			return rows, mismatch
		}

		werr := fw.Write(rec)
		if werr == nil {
			rows += rec.NumRows()
		}
		rec.Release()
		if werr != nil {
			return rows, fmt.Errorf("failed to write row group: %w", werr)
		}
	}

	return rows, nil
}

// writeEmptyParquet writes a valid zero-row file with an empty schema, used
// when the result set has no batches to derive a schema from.
func writeEmptyParquet(dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	fw, err := pqarrow.NewFileWriter(arrow.NewSchema([]arrow.Field{}, nil), f, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to initialize parquet writer: %w", err)
	}
	if err := fw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	f.Close()
	return nil
}
