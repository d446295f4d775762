// Package logging provides structured logging built on log/slog.
//
// Output goes to stderr by default: stdout carries the MCP protocol frames
// and must stay clean.
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	logger.Info("export complete", "rows", 1234)
package logging
