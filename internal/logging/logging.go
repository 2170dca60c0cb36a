package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process-wide *slog.Logger, installs it as the default, and
// returns it. The level string comes straight from the environment and accepts
// "debug", "info", "warn" or "error" (case-insensitive); anything else means
// info.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
