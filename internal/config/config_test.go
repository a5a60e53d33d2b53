package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "email-captures", cfg.Export.DefaultPrefix)
	assert.Equal(t, "en-US", cfg.Export.Locale)
	assert.Equal(t, "UTC", cfg.Export.Timezone)
	assert.Equal(t, 10000, cfg.Export.MaxRecords)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("CAPTURE_SERVER_PORT", "9090")
	t.Setenv("CAPTURE_SERVER_READ_TIMEOUT", "5s")
	t.Setenv("CAPTURE_EXPORT_LOCALE", "de-DE")
	t.Setenv("CAPTURE_EXPORT_TIMEZONE", "Europe/Berlin")
	t.Setenv("CAPTURE_EXPORT_DEFAULT_PREFIX", "leads")
	t.Setenv("CAPTURE_LOGGING_LEVEL", "DEBUG")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "de-DE", cfg.Export.Locale)
	assert.Equal(t, "leads", cfg.Export.DefaultPrefix)
	assert.Equal(t, "debug", cfg.Logging.Level)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadFile_FileThenEnv(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 7000
  request_timeout: 45s
export:
  default_prefix: newsletter
  max_records: 50
`)
	t.Setenv("CAPTURE_SERVER_PORT", "7100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "newsletter", cfg.Export.DefaultPrefix)
	assert.Equal(t, 50, cfg.Export.MaxRecords)
	assert.Equal(t, "en-US", cfg.Export.Locale, "unset keys keep defaults")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_BadEnvValue(t *testing.T) {
	t.Setenv("CAPTURE_SERVER_PORT", "not-a-number")
	_, err := LoadFile("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, true},
		{"request timeout", func(c *Config) { c.Server.RequestTimeout = -time.Second }, true},
		{"body size", func(c *Config) { c.Server.MaxBodyBytes = 0 }, true},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"log output", func(c *Config) { c.Logging.Output = "syslog" }, true},
		{"prefix with slash", func(c *Config) { c.Export.DefaultPrefix = "a/b" }, true},
		{"bad locale", func(c *Config) { c.Export.Locale = "not a locale!!" }, true},
		{"empty locale", func(c *Config) { c.Export.Locale = "" }, false},
		{"bad timezone", func(c *Config) { c.Export.Timezone = "Mars/Olympus" }, true},
		{"local timezone", func(c *Config) { c.Export.Timezone = "Local" }, false},
		{"max records", func(c *Config) { c.Export.MaxRecords = 0 }, true},
		{"rate limit burst", func(c *Config) { c.RateLimit.Burst = 0 }, true},
		{"rate limit disabled", func(c *Config) { c.RateLimit.Enabled = false; c.RateLimit.Burst = 0 }, false},
		{"trace exporter", func(c *Config) { c.Telemetry.TraceExporter = "otlp" }, true},
		{"metric exporter", func(c *Config) { c.Telemetry.MetricExporter = "statsd" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "FILE"
	cfg.Logging.FilePath = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "file", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}
