package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates a console logger on stderr at the named level.
// Unknown or empty names fall back to fallback.
func New(level string, fallback zerolog.Level) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, fallback)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level string, fallback zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: os.Getenv("NO_COLOR") != ""}
	return zerolog.New(output).With().Timestamp().Logger().Level(ParseLevel(level, fallback))
}

// ParseLevel maps debug, info, warn and error (any case) to zerolog levels.
func ParseLevel(level string, fallback zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return fallback
}

// ValidLevel reports whether level is accepted by ParseLevel.
func ValidLevel(level string) bool {
	return ParseLevel(level, zerolog.NoLevel) != zerolog.NoLevel
}
