// Package logger provides structured logging functionality for the application
// using Go's standard library log/slog package.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/todox-app/todox-api/internal/config"
)

type contextKey struct{}

// loggerKey is the context key under which a request-scoped logger is stored.
var loggerKey = contextKey{}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger with the
// appropriate log level and sets it as the default logger for the application.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo

		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	// Set this logger as the default for the application so the slog package
	// functions (slog.Info, slog.Error, etc.) use it directly.
	slog.SetDefault(logger)

	return logger, nil
}

// WithLogger returns a new context carrying the given logger.
// Middleware uses this to attach a request-scoped logger (with trace ID).
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger stored in the context, falling back to
// the process default logger when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger stored in the context, falling
// back to the provided default when none is present.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	if def != nil {
		return def
	}
	return slog.Default()
}
