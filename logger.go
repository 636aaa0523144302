package lbdist

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with lbdist-specific context.
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
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithWindow adds the window radius field to the logger.
func (l *Logger) WithWindow(window int) *Logger {
	return &Logger{
		Logger: l.Logger.With("window", window),
	}
}

// WithShape adds the result shape fields to the logger.
func (l *Logger) WithShape(rows, cols int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows, "cols", cols),
	}
}

// LogBuild logs a completed or failed matrix build.
func (l *Logger) LogBuild(ctx context.Context, rows, cols, workers int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"rows", rows,
			"cols", cols,
			"workers", workers,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "build completed",
			"rows", rows,
			"cols", cols,
			"workers", workers,
			"duration", duration,
		)
	}
}

// LogSymmetrize logs the outcome of a symmetry pass.
func (l *Logger) LogSymmetrize(ctx context.Context, rows, cols int, applied bool) {
	if !applied {
		l.WarnContext(ctx, "symmetry requested on non-square matrix, leaving result unchanged",
			"rows", rows,
			"cols", cols,
		)
	} else {
		l.DebugContext(ctx, "symmetry enforced",
			"rows", rows,
		)
	}
}
