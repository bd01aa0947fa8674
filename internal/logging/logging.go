// Package logging builds the jsonwatch [log/slog] logger from the loaded
// configuration and carries it through contexts.
//
// Logs go to stderr so that they never mix with change reports on stdout.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/Gitoffthelawn/jsonwatch/internal/config"
)

type ctxKey struct{}

// SetupWithWriter creates a logger for cfg writing to w and installs it as
// the process-wide default. The level honours --quiet and -v/-vv through
// cfg.EffectiveLogLevel.
func SetupWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := New(w, cfg.LogFormat, ParseLevel(cfg.EffectiveLogLevel()))
	slog.SetDefault(logger)

	return logger
}

// New creates a logger without touching the process default.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler

	switch format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a configured level name to a slog.Level. Unknown
// names map to warn, the jsonwatch default.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewContext returns a child context carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from ctx, falling back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}
