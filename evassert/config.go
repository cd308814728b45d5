package evassert

import (
	"time"

	"github.com/capatazlib/go-evassert/internal/config"
)

// Config holds the acquirer settings that can be read from files and the
// environment
//
// Since: 0.1.0
type Config = config.Config

// Duration is a time.Duration that reads as a duration string from config
// files
//
// Since: 0.1.0
type Duration = config.Duration

// DefaultConfig returns the built-in configuration
//
// Since: 0.1.0
var DefaultConfig = config.Default

// LoadConfig reads a JSON or YAML (by extension) configuration file on top of
// the defaults
//
// Since: 0.1.0
var LoadConfig = config.Load

// ConfigFromEnv overlays EVASSERT_* environment variables onto a Config,
// reporting a timeout that does not parse
//
// Since: 0.1.0
var ConfigFromEnv = config.FromEnv

// FromConfig turns a Config into the options of an Acquirer: its timeout and a
// logger with the configured level and format. Metrics are not part of the
// returned options, they need a prometheus registerer (see NewMetrics).
//
// Since: 0.1.0
func FromConfig(cfg Config) ([]AcquirerOpt, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	return []AcquirerOpt{
		WithTimeout(time.Duration(cfg.Timeout)),
		WithLogger(log),
	}, nil
}
