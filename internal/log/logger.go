// Package log configures the process-wide slog logger. Output goes to a file
// rather than stdout because the dashboard owns the terminal for the whole
// run; the log file doubles as the permanent record of what each tick did.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	once   sync.Once
	logger *slog.Logger
	closer io.Closer
)

// Setup initializes the global logger writing JSON records to path. An empty
// path discards log output (the status table is still visible on screen).
// Invalid levels fall back to INFO.
func Setup(level, path string) error {
	var setupErr error
	once.Do(func() {
		var l slog.Level
		switch strings.ToUpper(level) {
		case "DEBUG":
			l = slog.LevelDebug
		case "WARN":
			l = slog.LevelWarn
		case "ERROR":
			l = slog.LevelError
		default:
			l = slog.LevelInfo
		}

		var w io.Writer = io.Discard
		if path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				setupErr = err
				return
			}
			w = f
			closer = f
		}

		handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})
		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
	return setupErr
}

// Close flushes and closes the log file, if one was opened.
func Close() {
	if closer != nil {
		_ = closer.Close()
	}
}

// Get returns the configured logger, or a discarding default if Setup hasn't
// been called.
func Get() *slog.Logger {
	if logger == nil {
		_ = Setup("INFO", "")
	}
	return logger
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// WithJob returns a logger with the job field set.
func WithJob(name string) *slog.Logger {
	return Get().With(slog.String("job", name))
}

// WithRun returns a logger with the run_id field set.
func WithRun(id string) *slog.Logger {
	return Get().With(slog.String("run_id", id))
}
