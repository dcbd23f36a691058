package sharky

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with sharky-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
}

// WithRole adds a worker role field to the logger.
func (l *Logger) WithRole(role string) *Logger {
	return &Logger{
		Logger: l.Logger.With("role", role),
	}
}

// LogTransfer logs one chunk handed to the pipe.
func (l *Logger) LogTransfer(ctx context.Context, bytes int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "transfer failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "transfer completed",
			"bytes", bytes,
			"duration", duration,
		)
	}
}

// LogWorkerExit logs the end of a pipeline worker.
func (l *Logger) LogWorkerExit(ctx context.Context, role string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "worker failed",
			"role", role,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "worker finished",
			"role", role,
			"duration", duration,
		)
	}
}

// LogGeneratorDone logs the candidate totals of the writer.
func (l *Logger) LogGeneratorDone(ctx context.Context, name string, maxDistance, candidates, transfers int) {
	l.InfoContext(ctx, "generation completed",
		"name", name,
		"max_distance", maxDistance,
		"candidates", candidates,
		"transfers", transfers,
	)
}

// LogDictionaryLoaded logs a built dictionary index.
func (l *Logger) LogDictionaryLoaded(ctx context.Context, source string, entries int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dictionary load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dictionary loaded",
			"source", source,
			"entries", entries,
			"duration", duration,
		)
	}
}

// LogFilterSummary logs the dictionary filter totals.
func (l *Logger) LogFilterSummary(ctx context.Context, checked, hits int, distinct uint64) {
	l.InfoContext(ctx, "filter completed",
		"checked", checked,
		"hits", hits,
		"distinct_entries", distinct,
	)
}
