package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"sqlferry/pkg/export"
	"sqlferry/pkg/source"
)

// ExportRunner executes one export request end to end.
type ExportRunner interface {
	Run(ctx context.Context, req export.Request) (*export.Result, error)
}

// Config holds the dependencies for a Server.
type Config struct {
	// Version is reported to MCP clients during initialization.
	Version string

	// Runner executes export requests.
	Runner ExportRunner

	// Logger receives request logs. Defaults to slog.Default.
	Logger *slog.Logger

	// DefaultBatchSize is used when a request omits batch_size.
	DefaultBatchSize int64

	// DefaultCostThreshold is used when a request omits cost_threshold.
	DefaultCostThreshold int

	// QueryTimeout bounds one export's source-side execution. Zero means
	// no timeout.
	QueryTimeout time.Duration
}

// Server is an MCP stdio server exposing the run_sql tool.
type Server struct {
	mcp                  *server.MCPServer
	runner               ExportRunner
	logger               *slog.Logger
	defaultBatchSize     int64
	defaultCostThreshold int
	queryTimeout         time.Duration
}

// New creates a Server and registers its tools.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := cfg.DefaultBatchSize
	if batchSize <= 0 {
		batchSize = export.DefaultBatchSize
	}

	s := &Server{
		runner:               cfg.Runner,
		logger:               logger,
		defaultBatchSize:     batchSize,
		defaultCostThreshold: cfg.DefaultCostThreshold,
		queryTimeout:         cfg.QueryTimeout,
	}

	s.mcp = server.NewMCPServer("sqlferry", cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.mcp.AddTool(runSQLTool(batchSize), s.handleRunSQL)

	return s
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// runSQLTool declares the run_sql tool schema.
func runSQLTool(defaultBatchSize int64) mcp.Tool {
	return mcp.NewTool("run_sql",
		mcp.WithDescription("Execute a SQL statement against the configured data source and stream the result into a CSV or Parquet file."),
		mcp.WithString("sql_file",
			mcp.Required(),
			mcp.Description("Path to a file containing the SQL statement to execute."),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Destination file path for the exported result."),
		),
		mcp.WithString("output_format",
			mcp.Required(),
			mcp.Description("Output format for the result file."),
			mcp.Enum("csv", "parquet"),
		),
		mcp.WithNumber("batch_size",
			mcp.Description("Rows per record batch."),
			mcp.DefaultNumber(float64(defaultBatchSize)),
		),
		mcp.WithNumber("cost_threshold",
			mcp.Description("Token budget for the exported text. Zero disables cost tracking."),
		),
	)
}

// handleRunSQL handles one run_sql invocation. Failures are returned as tool
// errors, categorized so the caller does not have to parse free text.
func (s *Server) handleRunSQL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sqlFile, err := req.RequireString("sql_file")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}
	outputPath, err := req.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}
	outputFormat, err := req.RequireString("output_format")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}
	batchSize := int64(req.GetInt("batch_size", int(s.defaultBatchSize)))
	costThreshold := req.GetInt("cost_threshold", s.defaultCostThreshold)

	query, err := os.ReadFile(sqlFile)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return mcp.NewToolResultError(fmt.Sprintf("SQL file not found: %s", sqlFile)), nil
		case os.IsPermission(err):
			return mcp.NewToolResultError(fmt.Sprintf("Permission denied reading SQL file: %s", sqlFile)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read SQL file %s: %v", sqlFile, err)), nil
		}
	}

	s.logger.Info("export requested",
		"sql_file", sqlFile,
		"output_path", outputPath,
		"output_format", outputFormat,
		"batch_size", batchSize,
	)

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	res, err := s.runner.Run(ctx, export.Request{
		Query:         string(query),
		Destination:   outputPath,
		Format:        export.Format(outputFormat),
		BatchSize:     batchSize,
		CostThreshold: costThreshold,
	})
	if err != nil {
		s.logger.Error("export failed", "output_path", outputPath, "error", err)
		return mcp.NewToolResultError(toolError(err)), nil
	}

	s.logger.Info("export finished",
		"export_id", res.ID,
		"rows", res.Rows,
		"duration", res.Duration,
	)
	return mcp.NewToolResultText(res.Summary()), nil
}

// toolError maps pipeline errors to the text returned to MCP clients.
func toolError(err error) string {
	var invalid *export.InvalidRequestError
	var empty *export.EmptyQueryError
	var mismatch *export.SchemaMismatchError
	var ds *source.DataSourceError

	switch {
	case errors.As(err, &empty):
		return fmt.Sprintf("Invalid arguments: %v", empty)
	case errors.As(err, &invalid):
		return fmt.Sprintf("Invalid arguments: %v", invalid)
	case errors.As(err, &mismatch):
		return fmt.Sprintf("Execution failed: %v", mismatch)
	case errors.As(err, &ds):
		return ds.Error()
	default:
		return fmt.Sprintf("Execution failed: %v", err)
	}
}
