// Package applog provides the structured diagnostic logging used outside
// the interactive banner path (spec.md §7): SinkClosed, PipeCreate,
// PipeRead, PipeWrite and RegexError all get a log record when the
// process is not running in interactive mode.
package applog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once    sync.Once
	current *slog.Logger
)

// Logger returns the process-wide diagnostic logger, writing structured
// text records to stderr so stdout remains reserved for search output.
func Logger() *slog.Logger {
	once.Do(func() {
		current = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	})
	return current
}

// SetLogger overrides the process-wide logger, used by tests to capture
// output.
func SetLogger(l *slog.Logger) {
	once.Do(func() {})
	current = l
}

// Kind names the error taxonomy of spec.md §7, used as a log attribute
// rather than a Go error type, since these are non-recoverable process
// conditions, not values callers branch on.
type Kind string

const (
	SinkClosed   Kind = "sink_closed"
	PipeCreate   Kind = "pipe_create"
	PipeRead     Kind = "pipe_read"
	PipeWrite    Kind = "pipe_write"
	RegexError   Kind = "regex_error"
	InputTooLong Kind = "input_too_long"
	Cancelled    Kind = "cancelled"
)

// Report logs a taxonomy event with its originating error, if any.
func Report(kind Kind, msg string, err error) {
	if err != nil {
		Logger().Error(msg, "kind", string(kind), "error", err)
		return
	}
	Logger().Warn(msg, "kind", string(kind))
}
