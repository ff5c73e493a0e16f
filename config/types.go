package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Solve   SolveConfig   `mapstructure:"solve"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds captchaly API connection details
type APIConfig struct {
	Key                string        `mapstructure:"key"`
	Variant            string        `mapstructure:"variant"`
	BaseURL            string        `mapstructure:"base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	PoolSize           int           `mapstructure:"pool_size"`
	Verbose            bool          `mapstructure:"verbose"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

// SolveConfig contains defaults for the solve command
type SolveConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	Proxy       string `mapstructure:"proxy"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
