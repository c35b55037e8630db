// Package logger builds the zerolog loggers the planner's entry points
// share: strict level parsing, optional console formatting, RFC3339
// timestamps.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Level  string // zerolog level name: debug, info, warn, error
	Pretty bool   // Enable pretty console output
}

// New creates a structured logger. An unknown level name is an error so a
// LOG_LEVEL typo fails at startup instead of silently logging everything.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// Default is the info-level console logger used before configuration has
// loaded, when there is nowhere else to report a startup failure.
func Default() zerolog.Logger {
	log, _ := New(Config{Level: "info", Pretty: true})
	return log
}
