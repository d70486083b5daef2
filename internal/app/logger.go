package app

import (
	"io"
	"log/slog"
)

// newLogger builds the logger for one App instance from the CLI's log
// settings. It is handed to every subsystem through ctxlog rather than the
// slog global, so two networks loaded in the same process (as in tests) log
// independently.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(levelStr)}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}

// parseLevel maps a CLI log-level string to its slog level. The CLI has
// already rejected anything else, so unknown strings just mean info.
func parseLevel(s string) slog.Level {
	switch s {
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
