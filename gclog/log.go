// Package gclog wraps log/slog with the level/format configuration shape
// this tool exposes on its CLI, modeled on the teacher corpus's own
// slog-config package.
package gclog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the slog handler's output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ErrUnknownLogLevel is returned by ParseLevel for an unrecognized level string.
var ErrUnknownLogLevel = errors.New("gclog: unknown log level")

// ErrUnknownLogFormat is returned by Config.Handler for an unrecognized format string.
var ErrUnknownLogFormat = errors.New("gclog: unknown log format")

// Config holds the level/format pair the CLI's --log-level/--log-format
// flags populate.
type Config struct {
	Level  string
	Format string
}

// NewConfig returns the default configuration: info level, text format.
func NewConfig() Config {
	return Config{Level: "info", Format: string(FormatText)}
}

// ParseLevel maps a level string to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
	}
}

// Handler builds a slog.Handler writing to w per the configured level and format.
func (c Config) Handler(w io.Writer) (slog.Handler, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	switch Format(strings.ToLower(c.Format)) {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	case FormatText, "":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.Format)
	}
}

// New builds a ready-to-use *slog.Logger writing to w.
func (c Config) New(w io.Writer) (*slog.Logger, error) {
	h, err := c.Handler(w)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}
