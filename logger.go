package scbridge

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with scbridge-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogLoad logs a matrix load.
func (l *Logger) LogLoad(ctx context.Context, path string, rows, cols int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"path", path,
			"features", rows,
			"observations", cols,
		)
	}
}

// LogDetect logs an identifier detection outcome.
func (l *Logger) LogDetect(ctx context.Context, column string, overlap, sampled int) {
	l.DebugContext(ctx, "identifier detection completed",
		"column", column,
		"overlap", overlap,
		"sampled", sampled,
	)
}

// LogRemap logs remapping coverage.
func (l *Logger) LogRemap(ctx context.Context, from, to string, found, attempted int) {
	l.InfoContext(ctx, "remap completed",
		"from", from,
		"to", to,
		"found", found,
		"attempted", attempted,
	)
}

// LogScore logs a cluster-structure score.
func (l *Logger) LogScore(ctx context.Context, score float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scoring failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "scoring completed",
			"score", score,
		)
	}
}
