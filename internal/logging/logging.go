// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Configure installs a text handler on stderr as the default logger.
// Stdout is left alone because the MCP transport owns it.
func Configure(lvl string) error {
	return ConfigureWriter(os.Stderr, lvl)
}

// ConfigureWriter is Configure with an explicit destination.
func ConfigureWriter(w io.Writer, lvl string) error {
	l, err := ParseLevel(lvl)
	if err != nil {
		return err
	}
	level.Set(l)
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

// SetLevel changes the level of the configured logger.
func SetLevel(l slog.Level) { level.Set(l) }
