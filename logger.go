package bitvec

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bitvec-specific fields.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithLength adds a length field to the logger.
func (l *Logger) WithLength(length int) *Logger {
	return &Logger{
		Logger: l.Logger.With("length", length),
	}
}

// LogGrowth logs a capacity change of a Growable.
func (l *Logger) LogGrowth(oldLength, newLength int, err error) {
	if err != nil {
		l.Error("growth failed",
			"old_length", oldLength,
			"new_length", newLength,
			"error", err,
		)
		return
	}
	l.Debug("growth completed",
		"old_length", oldLength,
		"new_length", newLength,
	)
}
