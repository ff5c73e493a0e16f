package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/captchaly/captchaly"
)

// EnvPrefix prefixes environment overrides, e.g. CAPTCHALY_API_KEY
const EnvPrefix = "CAPTCHALY"

// Load loads the configuration from file and environment and validates it
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Read loads the configuration like Load but skips validation, for commands
// that never reach the service.
func Read(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".captchaly"))
		}

		// Check /etc
		v.AddConfigPath("/etc/captchaly/")
	}

	// Read config file. Without one the key may still come from the environment.
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

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key needs a default so
// AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.key", "")
	v.SetDefault("api.variant", string(captchaly.VariantRevised))
	v.SetDefault("api.base_url", captchaly.DefaultBaseURL)
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("api.pool_size", captchaly.DefaultPoolSize)
	v.SetDefault("api.verbose", true)
	v.SetDefault("api.insecure_skip_verify", false)

	// Solve defaults
	v.SetDefault("solve.concurrency", captchaly.DefaultConcurrency)
	v.SetDefault("solve.proxy", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.API.Key == "" || cfg.API.Key == "your-api-key-here" {
		return fmt.Errorf("api.key must be set to a valid API key")
	}

	if _, err := captchaly.ParseVariant(cfg.API.Variant); err != nil {
		return fmt.Errorf("invalid api.variant: %s (must be 'revised' or 'legacy')", cfg.API.Variant)
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	if cfg.Solve.Concurrency < 0 {
		return fmt.Errorf("solve.concurrency must not be negative")
	}

	if cfg.Solve.Proxy != "" {
		if _, err := captchaly.ParseProxy(cfg.Solve.Proxy); err != nil {
			return fmt.Errorf("invalid solve.proxy: %w", err)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
