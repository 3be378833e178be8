package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New creates the console slog.Logger used across the service. Components
// derive their own loggers from it via With("component", name).
func New(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler).With("service", "blookin")
}

// levelFromString maps the config value to a slog level. Unknown values fall
// back to debug so a typo surfaces everything rather than hiding output.
func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
