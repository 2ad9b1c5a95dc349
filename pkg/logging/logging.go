// Package logging configures the zerolog logger used by dashgen.
//
// Logs always go to stderr so stdout carries only the human summary printed
// after an export is written.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

// Config selects level and output format.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // "console" or "json"
}

// RegisterFlags binds the logging flags onto flags, seeded from cfg.
func RegisterFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.StringVar(&cfg.Level, "log-level", cfg.Level, `verbosity of logging ("trace", "debug", "info", "warn", "error")`)
	flags.StringVar(&cfg.Format, "log-format", cfg.Format, `format of logs ("console", "json")`)
}

// Validate reports an unknown level or format. An empty level means info.
func (c Config) Validate() error {
	if c.Level != "" {
		if _, err := zerolog.ParseLevel(c.Level); err != nil {
			return errors.Newf("unknown log level %q", c.Level)
		}
	}
	switch c.Format {
	case "", "console", "json":
		return nil
	default:
		return errors.Newf("unknown log format %q", c.Format)
	}
}

// New creates a logger writing to w. Callers that accept user input should
// Validate first; New falls back to info for a level it cannot parse.
func New(w io.Writer, cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Setup installs a stderr logger as the global zerolog logger.
func Setup(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = New(os.Stderr, cfg)
}
