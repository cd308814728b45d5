package config

import (
	"fmt"
	"os"
	"time"
)

// FromEnv overlays EVASSERT_* environment variables onto cfg. A timeout that
// does not parse as a positive duration leaves cfg.Timeout untouched and is
// reported in the returned error; the other variables are applied anyway.
func FromEnv(cfg *Config) error {
	var err error
	if v := os.Getenv("EVASSERT_TIMEOUT"); v != "" {
		d, parseErr := time.ParseDuration(v)
		switch {
		case parseErr != nil:
			err = fmt.Errorf("EVASSERT_TIMEOUT: %w", parseErr)
		case d <= 0:
			err = fmt.Errorf("EVASSERT_TIMEOUT: must be positive, got %v", d)
		default:
			cfg.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("EVASSERT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("EVASSERT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("EVASSERT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	return err
}
