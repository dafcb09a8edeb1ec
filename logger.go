package vqgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vqgo-specific context.
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

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithNumCodes adds a codebook size field to the logger.
func (l *Logger) WithNumCodes(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("num_codes", k),
	}
}

// LogQuantize logs a quantize operation.
func (l *Logger) LogQuantize(ctx context.Context, n int, codebookLoss, commitmentLoss float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "quantize failed",
			"vectors", n,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "quantize completed",
			"vectors", n,
			"codebook_loss", codebookLoss,
			"commitment_loss", commitmentLoss,
		)
	}
}

// LogAssign logs a code-assignment operation.
func (l *Logger) LogAssign(ctx context.Context, n int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "assign failed",
			"vectors", n,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "assign completed",
			"vectors", n,
		)
	}
}
