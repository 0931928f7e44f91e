package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with knn-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

func NewTextLogger(w io.Writer, level slog.Leveler) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func NewJSONLogger(w io.Writer, level slog.Leveler) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// LoggerFromConfig builds a logger from the log section of the config. The
// level is seeded from the config and can be changed later through level.
func LoggerFromConfig(w io.Writer, cfg LogConfig, level *slog.LevelVar) *Logger {
	level.Set(ParseLevel(cfg.Level))
	if strings.EqualFold(cfg.Format, "json") {
		return NewJSONLogger(w, level)
	}
	return NewTextLogger(w, level)
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// WithDataset tags log lines with a dataset location and, when non-empty,
// its role.
func (l *Logger) WithDataset(role, uri string) *Logger {
	if role == "" {
		return &Logger{Logger: l.Logger.With("uri", uri)}
	}
	return &Logger{Logger: l.Logger.With("role", role, "uri", uri)}
}

// LogLoad expects a logger scoped with WithDataset.
func (l *Logger) LogLoad(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed", "error", err)
		return
	}
	l.DebugContext(ctx, "dataset loaded", "rows", rows)
}

func (l *Logger) LogEvaluate(ctx context.Context, k int, result *EvaluationResult, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluate failed", "k", k, "error", err)
		return
	}
	l.InfoContext(ctx, "evaluate completed",
		"k", k,
		"accuracy", result.Accuracy,
		"correct", result.Correct,
		"total", result.Total,
	)
}
