// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

var level = new(slog.LevelVar)

// Configure installs a text or JSON handler writing to w as the default logger
// and returns it. Unknown levels fall back to INFO.
func Configure(w io.Writer, levelName, format string) *slog.Logger {
	SetLevel(levelName)

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// SetLevel changes the level of the logger installed by Configure.
func SetLevel(levelName string) {
	switch strings.ToUpper(levelName) {
	case "DEBUG":
		level.Set(slog.LevelDebug)
	case "WARN":
		level.Set(slog.LevelWarn)
	case "ERROR":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}
