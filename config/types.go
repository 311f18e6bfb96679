package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Doofinder DoofinderConfig `mapstructure:"doofinder"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	QueryLog  QueryLogConfig  `mapstructure:"querylog"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// DoofinderConfig holds the Management API credentials. Empty values fall
// back to the DOOFINDER_* environment variables.
type DoofinderConfig struct {
	Token     string   `mapstructure:"token"`
	Zone      string   `mapstructure:"zone"`
	Host      string   `mapstructure:"host"`
	UserAgent string   `mapstructure:"user_agent"`
	HashIDs   []string `mapstructure:"hashids"`
}

// HTTPConfig tunes the transport shared by all API calls
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxRetryDelay time.Duration `mapstructure:"max_retry_delay"`
	RateLimit     float64       `mapstructure:"rate_limit"`
	Burst         int           `mapstructure:"burst"`
	Debug         bool          `mapstructure:"debug"`
}

// QueryLogConfig contains query log filter settings
type QueryLogConfig struct {
	DefaultFilter string            `mapstructure:"default_filter"`
	Presets       map[string]string `mapstructure:"presets"`
	CacheSize     int               `mapstructure:"cache_size"`
}

// ReportConfig controls the concurrent report command
type ReportConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// TracingConfig configures OpenTelemetry export
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}
