package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1950*time.Millisecond, time.Duration(cfg.Timeout))
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, FormatText, cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadJSON(t *testing.T) {
	file := writeFile(t, "evassert.json", `{"timeout":"250ms","logFormat":"json"}`)

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Timeout))
	assert.Equal(t, FormatJSON, cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep their defaults")
}

func TestLoadYAML(t *testing.T) {
	file := writeFile(t, "evassert.yaml", "timeout: 3s\nlogLevel: debug\nmetricsAddr: \":9090\"\n")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, time.Duration(cfg.Timeout))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoadInvalid(t *testing.T) {
	for name, tc := range map[string]struct{ file, content string }{
		"bad duration": {"a.json", `{"timeout":"soon"}`},
		"zero timeout": {"a.yml", "timeout: 0s\n"},
		"bad level":    {"a.yaml", "logLevel: loud\n"},
		"bad format":   {"a.json", `{"logFormat":"xml"}`},
		"not json":     {"a.json", `timeout: 1s`},
		"missing file": {"", ""},
	} {
		tc := tc
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.json")
			if tc.file != "" {
				path = writeFile(t, tc.file, tc.content)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("EVASSERT_TIMEOUT", "500ms")
	t.Setenv("EVASSERT_LOG_LEVEL", "warn")
	t.Setenv("EVASSERT_LOG_FORMAT", "json")
	t.Setenv("EVASSERT_METRICS_ADDR", "127.0.0.1:2112")

	cfg := Default()
	require.NoError(t, FromEnv(&cfg))
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.Timeout))
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, FormatJSON, cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:2112", cfg.MetricsAddr)
}

func TestFromEnvReportsInvalidTimeout(t *testing.T) {
	for _, value := range []string{"-1s", "soon"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("EVASSERT_TIMEOUT", value)
			t.Setenv("EVASSERT_LOG_LEVEL", "warn")

			cfg := Default()
			err := FromEnv(&cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "EVASSERT_TIMEOUT")
			assert.Equal(t, Default().Timeout, cfg.Timeout)
			assert.Equal(t, "warn", cfg.LogLevel)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.LogFormat = FormatJSON

	log, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	cfg.LogFormat = "xml"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
