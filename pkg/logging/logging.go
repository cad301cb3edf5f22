// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls how the logger's handler is built.
type Config struct {
	// Level is the minimum level that gets emitted.
	Level slog.Level
	// JSON switches from the human-readable text handler to JSON
	// output, for running under a service manager or log shipper.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// FromEnv reads LOG_LEVEL (debug, info, warn, error; default info) and
// LOG_FORMAT (json switches to JSON output). Unrecognized values fall
// back to the defaults.
func FromEnv() Config {
	cfg := Config{Level: slog.LevelInfo, Output: os.Stderr}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn", "warning":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		cfg.JSON = true
	}

	return cfg
}

// Setup builds a logger from cfg, installs it as the slog default, and
// returns it.
func Setup(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
