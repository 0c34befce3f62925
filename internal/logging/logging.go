// Package logging configures the process-wide zerolog logger: leveled console
// output with optional ANSI color, an optional append-mode file sink, and
// per-component child loggers.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/backmassage/retrograde/internal/config"
	"github.com/backmassage/retrograde/internal/term"
)

// Setup initializes the global logger from cfg: level from Verbose, console
// color from the resolved color mode, and an optional file sink. The returned
// closer owns the log file; call it once the run is finished.
func Setup(cfg *config.Config) (func() error, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	term.Configure(cfg.ColorMode)

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    !term.Enabled(),
	}

	writers := []io.Writer{console}
	closer := func() error { return nil }

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
		closer = f.Close
	}

	log.Logger = NewLogger(writers...)
	return closer, nil
}

// NewLogger creates a logger over the given writers. With no writers it
// returns the current global logger.
func NewLogger(writers ...io.Writer) zerolog.Logger {
	if len(writers) == 0 {
		return log.Logger
	}
	if len(writers) == 1 {
		return zerolog.New(writers[0]).With().Timestamp().Logger()
	}
	multi := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(multi).With().Timestamp().Logger()
}

// WithComponent returns a child of the global logger tagged with a component
// field, so every package's output is attributable in mixed batch logs.
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
