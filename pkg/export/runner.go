package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"

	"sqlferry/pkg/source"
	"sqlferry/pkg/telemetry/metrics"
	"sqlferry/pkg/tokens"
)

// State is the orchestrator state for one export invocation.
type State string

const (
	// StateIdle is the initial state before the request is accepted.
	StateIdle State = "idle"
	// StateReading covers opening the source and probing for emptiness.
	StateReading State = "reading"
	// StateWriting covers writer dispatch through completion.
	StateWriting State = "writing"
	// StateDone is the terminal success state.
	StateDone State = "done"
	// StateFailed is terminal for the invocation; nothing is retried.
	StateFailed State = "failed"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Connection is the data source descriptor, fixed for the process
	// lifetime. Validated at startup; the runner only re-derives the
	// vendor for error attribution.
	Connection string

	// Engine executes queries. Nil selects the database/sql engine.
	Engine source.Engine

	// Logger receives export progress. Nil selects slog.Default.
	Logger *slog.Logger

	// Metrics records export outcomes. Optional.
	Metrics *metrics.Collector
}

// Runner orchestrates exports against one data source. It is the sole
// writer of each destination path for the duration of a request; concurrent
// exports must target distinct paths.
type Runner struct {
	conn    string
	engine  source.Engine
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	eng := cfg.Engine
	if eng == nil {
		eng = source.NewSQLEngine()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		conn:    cfg.Connection,
		engine:  eng,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Run executes one export end-to-end. Any failure after the destination has
// been touched triggers best-effort deletion of the partial output before
// the original error is returned.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	state := StateIdle

	res := &Result{
		ID:     uuid.NewString(),
		Format: req.Format,
	}
	// Cost accounting is defined on emitted text lines; only the CSV path
	// runs it, so only CSV results carry the threshold annotation.
	if req.Format == FormatCSV {
		res.CostThreshold = req.CostThreshold
	}

	defer func() {
		res.Duration = time.Since(start)
		if r.metrics != nil {
			r.metrics.RecordExport(string(req.Format), string(state), res.Rows, res.Cost, res.Duration)
		}
	}()

	if err := req.validate(); err != nil {
		state = StateFailed
		return nil, err
	}
	if req.BatchSize == 0 {
		req.BatchSize = DefaultBatchSize
	}

	dest := req.Destination
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			state = StateFailed
			return nil, err
		}
	}
	// No append-to-stale-file across runs: the same request against the
	// same path must produce byte-identical output every time.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			state = StateFailed
			return nil, err
		}
	}

	state = StateReading
	r.logger.Debug("opening batch source",
		"export_id", res.ID,
		"format", req.Format,
		"batch_size", req.BatchSize,
	)

	batches, err := source.Open(ctx, r.engine, r.conn, req.Query, req.BatchSize)
	if err != nil {
		state = StateFailed
		r.cleanup(dest)
		return nil, err
	}
	defer batches.Close()

	// Pull exactly one batch to learn whether the result is empty; the
	// schema is unknowable without it.
	first, err := batches.Next()
	if errors.Is(err, io.EOF) {
		state = StateWriting
		if werr := r.writeEmpty(req.Format, dest); werr != nil {
			state = StateFailed
			r.cleanup(dest)
			return nil, werr
		}
		state = StateDone
		r.logger.Info("export complete", "export_id", res.ID, "rows", 0, "path", dest)
		return res, nil
	}
	if err != nil {
		state = StateFailed
		r.cleanup(dest)
		return nil, err
	}
	batches.Prepend(first)

	state = StateWriting
	switch req.Format {
	case FormatCSV:
		header := columnNames(first.Schema())
		var coster *tokens.Estimator
		if req.CostThreshold > 0 {
			coster = tokens.NewEstimator(0)
		}
		res.Rows, res.Cost, err = WriteCSV(header, batches, dest, coster)
		if err == nil && req.CostThreshold > 0 {
			res.CostExceeded = res.Cost > req.CostThreshold
		}
	case FormatParquet:
		res.Rows, err = WriteParquet(batches, dest)
	}
	if err != nil {
		state = StateFailed
		r.cleanup(dest)
		return nil, err
	}

	state = StateDone
	r.logger.Info("export complete",
		"export_id", res.ID,
		"rows", res.Rows,
		"cost", res.Cost,
		"path", dest,
	)
	return res, nil
}

// writeEmpty handles the empty-result case: a zero-byte file for CSV, a
// valid empty-schema file for Parquet.
func (r *Runner) writeEmpty(format Format, dest string) error {
	switch format {
	case FormatCSV:
		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		return f.Close()
	case FormatParquet:
		return writeEmptyParquet(dest)
	}
	return nil
}

// cleanup removes a partially-written destination. Best effort: a deletion
// failure must never mask the failure that got us here.
func (r *Runner) cleanup(dest string) {
	if _, err := os.Stat(dest); err != nil {
		return
	}
	if err := os.Remove(dest); err != nil {
		r.logger.Warn("failed to remove partial output", "path", dest, "error", err)
	}
}

// columnNames returns the header fields for a result schema, in order.
func columnNames(schema *arrow.Schema) []string {
	names := make([]string, len(schema.Fields()))
	for i, f := range schema.Fields() {
		names[i] = f.Name
	}
	return names
}
