package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the process-wide slog default: JSON records on stdout.
// The minimum level comes from LOG_LEVEL (debug, info, warn, error) and
// falls back to info.
func Setup() {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
