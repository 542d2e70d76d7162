// Package logging sets up the process-wide slog logger. Logs always go
// to stderr: in serve mode stdout is reserved for MCP JSON-RPC framing.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on stderr at the given level and returns
// the logger. The returned logger is also set as slog's default.
func Setup(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
