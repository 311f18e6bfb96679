package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GODOOF_LOGGING_LEVEL.
const EnvPrefix = "GODOOF"

// Load loads the configuration. An explicit path must exist; otherwise the
// standard locations are searched and a missing file leaves the defaults
// and environment in place.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".godoof"))
		}
		v.AddConfigPath("/etc/godoof/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key is registered
// so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("doofinder.token", "")
	v.SetDefault("doofinder.zone", "")
	v.SetDefault("doofinder.host", "")
	v.SetDefault("doofinder.user_agent", "")
	v.SetDefault("doofinder.hashids", []string{})

	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.retry_delay", "500ms")
	v.SetDefault("http.max_retry_delay", "10s")
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("http.debug", false)

	v.SetDefault("querylog.default_filter", "")
	v.SetDefault("querylog.cache_size", 32)

	v.SetDefault("report.concurrency", 4)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.environment", "production")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Doofinder.Token == "your-api-token-here" {
		return fmt.Errorf("doofinder.token must be set to a valid API token")
	}
	if cfg.Doofinder.Host != "" && !strings.HasPrefix(cfg.Doofinder.Host, "http://") && !strings.HasPrefix(cfg.Doofinder.Host, "https://") {
		return fmt.Errorf("doofinder.host must be an http(s) URL: %s", cfg.Doofinder.Host)
	}

	if cfg.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	if cfg.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative")
	}
	if cfg.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative")
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.Burst < 1 {
		return fmt.Errorf("http.burst must be at least 1 when rate_limit is set")
	}

	if cfg.Report.Concurrency < 1 {
		return fmt.Errorf("report.concurrency must be at least 1")
	}

	for name, expr := range cfg.QueryLog.Presets {
		if strings.TrimSpace(expr) == "" {
			return fmt.Errorf("querylog preset %q has an empty expression", name)
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
	}

	return nil
}
