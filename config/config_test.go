package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2, cfg.HTTP.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.HTTP.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.HTTP.MaxRetryDelay)
	assert.Equal(t, 32, cfg.QueryLog.CacheSize)
	assert.Equal(t, 4, cfg.Report.Concurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Color)
	assert.False(t, cfg.Tracing.Enabled)
	assert.InDelta(t, 1.0, cfg.Tracing.SampleRate, 0.0001)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
doofinder:
  token: abc123
  zone: us1
  hashids:
    - 6a96504dc173514cab1e0198af92e6e9
http:
  timeout: 5s
  max_retries: 4
  rate_limit: 2.5
  burst: 3
querylog:
  default_filter: results == 0
  presets:
    zero: results == 0
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Doofinder.Token)
	assert.Equal(t, "us1", cfg.Doofinder.Zone)
	assert.Equal(t, []string{"6a96504dc173514cab1e0198af92e6e9"}, cfg.Doofinder.HashIDs)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 4, cfg.HTTP.MaxRetries)
	assert.InDelta(t, 2.5, cfg.HTTP.RateLimit, 0.0001)
	assert.Equal(t, 3, cfg.HTTP.Burst)
	assert.Equal(t, "results == 0", cfg.QueryLog.DefaultFilter)
	assert.Equal(t, map[string]string{"zero": "results == 0"}, cfg.QueryLog.Presets)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "doofinder:\n  zone: eu1\n")
	t.Setenv("GODOOF_DOOFINDER_ZONE", "us1")
	t.Setenv("GODOOF_LOGGING_LEVEL", "warn")
	t.Setenv("GODOOF_HTTP_TIMEOUT", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "us1", cfg.Doofinder.Zone)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, time.Minute, cfg.HTTP.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTP:    HTTPConfig{Timeout: time.Second, Burst: 1},
			Report:  ReportConfig{Concurrency: 1},
			Logging: LoggingConfig{Level: "info", Format: "console"},
			Tracing: TracingConfig{SampleRate: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "placeholder token",
			mutate:  func(c *Config) { c.Doofinder.Token = "your-api-token-here" },
			wantErr: "doofinder.token",
		},
		{
			name:    "host without scheme",
			mutate:  func(c *Config) { c.Doofinder.Host = "eu1-api.doofinder.com" },
			wantErr: "doofinder.host",
		},
		{
			name:   "host with scheme",
			mutate: func(c *Config) { c.Doofinder.Host = "https://eu1-api.doofinder.com" },
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.HTTP.MaxRetries = -1 },
			wantErr: "http.max_retries",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.HTTP.RateLimit = 1
				c.HTTP.Burst = 0
			},
			wantErr: "http.burst",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Report.Concurrency = 0 },
			wantErr: "report.concurrency",
		},
		{
			name:    "empty preset",
			mutate:  func(c *Config) { c.QueryLog.Presets = map[string]string{"x": " "} },
			wantErr: "querylog preset",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
		{
			name:    "sample rate",
			mutate:  func(c *Config) { c.Tracing.SampleRate = 2 },
			wantErr: "tracing.sample_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
