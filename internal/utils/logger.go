package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a slog.Logger configured for the desired verbosity and format.
// Output goes to stderr; stdout is reserved for the check result.
func NewLogger(level string, json bool) *slog.Logger {
	return NewLoggerTo(os.Stderr, level, json)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, level string, json bool) *slog.Logger {
	handlerLevel := slog.LevelWarn
	switch strings.ToLower(level) {
	case "debug":
		handlerLevel = slog.LevelDebug
	case "info":
		handlerLevel = slog.LevelInfo
	case "error":
		handlerLevel = slog.LevelError
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: handlerLevel})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: handlerLevel})
	}

	return slog.New(handler)
}
