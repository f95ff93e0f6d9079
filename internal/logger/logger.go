// Package logger configures log/slog for the application: JSON output with
// source locations, suitable for log aggregation.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the global slog logger with JSON output and source location
// tracking, and returns it for callers that want to pass it explicitly.
func Setup(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// ParseLevel converts a string log level to slog.Level, case-insensitively.
// Valid values: "debug", "info", "warn", "error"; anything else means info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
