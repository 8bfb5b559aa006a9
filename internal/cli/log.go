// Package cli implements the planboard command-line interface.
//
// Commands resolve a timeline window, lay out items from a file or from
// MongoDB, render SVG, PNG, PDF or JSON, serve the HTTP API and open an
// interactive terminal view. Settings come from the layered configuration
// in internal/config, with flags taking precedence.
//
// # Commands
//
// The main commands are:
//   - window: Print the resolved date range for a granularity and cursor
//   - layout: Compute a lane layout and write it as JSON
//   - render: Generate SVG, PNG, PDF or JSON from items or a layout file
//   - conflicts: Draw the overlap graph of a window with Graphviz
//   - view: Browse the timeline interactively in the terminal
//   - serve: Run the HTTP API
//   - cache: Manage the layout and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a pipeline stage and logs its completion with the
// elapsed duration. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, rounded to the
// millisecond:
//
//	14:32:01.45 INFO Loaded items count=42 source=file:plan.yaml window="Q2 2024" elapsed=12ms
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx. The root command attaches the CLI logger
// before any subcommand runs; view swaps in a discarding one.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
