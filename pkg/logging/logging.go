// Package logging configures structured logging for tally using log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options control handler construction.
type Options struct {
	// Level is the minimum level to emit.
	Level slog.Level
	// JSON selects the JSON handler instead of text.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// FromEnv builds Options from TALLY_LOG_LEVEL and TALLY_LOG_JSON.
func FromEnv() Options {
	opts := Options{Level: slog.LevelInfo, Output: os.Stderr}
	if v := os.Getenv("TALLY_LOG_LEVEL"); v != "" {
		opts.Level = parseLevel(v)
	}
	if v := os.Getenv("TALLY_LOG_JSON"); v == "true" || v == "1" {
		opts.JSON = true
	}
	return opts
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds a logger, installs it as the slog default, and returns it.
func Setup(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, hopts)
	} else {
		handler = slog.NewTextHandler(opts.Output, hopts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
