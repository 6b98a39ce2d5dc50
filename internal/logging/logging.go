// Package logging builds the slog logger that is injected into every
// component. There is no package-level logger anywhere in this codebase;
// components receive their logger through their constructor.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a JSON-formatted logger at the given level.
// Unknown level strings fall back to info.
func New(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
}
