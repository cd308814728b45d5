// Package config loads the acquirer settings from defaults, JSON or YAML
// files and EVASSERT_* environment variables.
package config
