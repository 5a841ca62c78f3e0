package slogx

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

// Format selects how records are rendered.
type Format string

const (
	// FormatConsole renders human readable, colored lines.
	FormatConsole Format = "console"
	// FormatJSON renders one JSON object per record.
	FormatJSON Format = "json"
)

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

// ParseFormat validates a format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatConsole:
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatConsole, fmt.Errorf("unknown log format %q", value)
	}
}

// NewLogger builds a slog.Logger whose records are written by zerolog.
func NewLogger(w io.Writer, level slog.Level, format Format) *slog.Logger {
	var zl zerolog.Logger
	if format == FormatJSON {
		zl = zerolog.New(w)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp})
	}
	zl = zl.With().Timestamp().Logger()

	return slog.New(zeroslog.NewHandler(zl, &zeroslog.HandlerOptions{Level: level}))
}
