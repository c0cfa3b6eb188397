package bankergo

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/bankergo/vector"
)

// Logger wraps slog.Logger with allocator-specific helpers.
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
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithClaimant adds a claimant id field to the logger.
func (l *Logger) WithClaimant(id int) *Logger {
	return &Logger{
		Logger: l.Logger.With("claimant", id),
	}
}

// LogRequest logs the outcome of a resource request.
func (l *Logger) LogRequest(ctx context.Context, id int, req vector.Vector, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "request granted",
			"claimant", id,
			"request", req.String(),
		)
	case IsDenial(err):
		l.InfoContext(ctx, "request denied",
			"claimant", id,
			"request", req.String(),
			"reason", DenialReason(err),
		)
	default:
		l.ErrorContext(ctx, "request failed",
			"claimant", id,
			"request", req.String(),
			"error", err,
		)
	}
}

// LogRelease logs the outcome of a resource release.
func (l *Logger) LogRelease(ctx context.Context, id int, rel vector.Vector, err error) {
	if err != nil {
		l.WarnContext(ctx, "release rejected",
			"claimant", id,
			"release", rel.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "release completed",
			"claimant", id,
			"release", rel.String(),
		)
	}
}

// LogGrowth logs a capacity growth.
func (l *Logger) LogGrowth(ctx context.Context, delta, total, available vector.Vector) {
	l.InfoContext(ctx, "capacity grown",
		"delta", delta.String(),
		"total", total.String(),
		"available", available.String(),
	)
}

// LogViolation logs a conservation violation detected by the monitor.
func (l *Logger) LogViolation(ctx context.Context, allocated, total vector.Vector) {
	l.ErrorContext(ctx, "conservation violated: allocated exceeds total",
		"allocated", allocated.String(),
		"total", total.String(),
	)
}

// LogRecovery logs a journal replay at construction.
func (l *Logger) LogRecovery(ctx context.Context, entriesReplayed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "journal recovery failed",
			"entries_replayed", entriesReplayed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "journal recovery completed",
			"entries_replayed", entriesReplayed,
		)
	}
}
