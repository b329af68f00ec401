// Package util holds process-wide concerns that don't belong to any single
// protocol layer: logging setup, OS signal handling, and small platform
// helpers.
package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig controls the global logger installed by InitLogger.
type LogConfig struct {
	Level   string
	Quiet   bool
	NoColor bool
}

// DefaultLogConfig returns ARRCON's default logging configuration: warnings
// and above, human-readable, colorized.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "warn"}
}

// InitLogger installs the zerolog global logger. ARRCON logs exclusively to
// stderr — stdout is reserved for command output and interactive prompts —
// and never writes a log file; there's no installation directory to put one
// in, and a CLI invocation's whole log is a few lines at most.
func InitLogger(cfg LogConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.WarnLevel
	}
	if cfg.Quiet {
		level = zerolog.Disabled
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// ComponentLogger returns a child logger tagged with the given component
// name, the same convention used at every layer from internal/transport up
// through internal/driver.
func ComponentLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
