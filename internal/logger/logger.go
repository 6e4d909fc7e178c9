// Package logger builds the zerolog logger shared by the application.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"minutesapi/internal/config"
)

// TimestampField is the key carrying the event time, matching the request log.
const TimestampField = "ts"

// New returns a logger writing to stdout.
func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(os.Stdout, cfg)
}

// NewWithWriter returns a logger writing JSON (or console output) to w.
func NewWithWriter(w io.Writer, cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "minutesapi").
		Logger()
}

func init() {
	zerolog.TimestampFieldName = TimestampField
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
