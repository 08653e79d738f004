// Package config holds the runtime configuration for the statetree client:
// logging, property-wait cadence and connection-search behavior. Values come
// from defaults, an optional YAML file and STATETREE_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration tree.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Client ClientConfig `mapstructure:"client" yaml:"client"`
	Search SearchConfig `mapstructure:"search" yaml:"search"`
}

// LoggerConfig controls the global zap logger built by the observability
// package.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`

	// File output with rotation; empty LogFile disables it.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ClientConfig controls the proxy model.
type ClientConfig struct {
	// WaitTimeout is the default budget for wait-for-value polling.
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	// PollInterval is the sleep ceiling between wait-for-value polls.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// SearchConfig controls connection search.
type SearchConfig struct {
	// Timeout bounds the whole search, covering the retry window while the
	// application under test is still starting up.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// PollInterval is the delay between candidate enumeration retries.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// ProbeConcurrency bounds how many candidates are probed in parallel.
	ProbeConcurrency int `mapstructure:"probe_concurrency" yaml:"probe_concurrency"`
}

// SetDefaults installs the default value for every key on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "statetree")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("client.wait_timeout", "10s")
	v.SetDefault("client.poll_interval", "1s")

	v.SetDefault("search.timeout", "10s")
	v.SetDefault("search.poll_interval", "100ms")
	v.SetDefault("search.probe_concurrency", 4)
}

// NewDefaultConfig returns a configuration populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// Defaults always unmarshal; anything else is a programming error.
		panic(fmt.Sprintf("failed to build default config: %v", err))
	}
	return cfg
}

// NewConfigFromViper unmarshals and validates a configuration from a viper
// instance the caller has already populated.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load builds a configuration from defaults, an optional config file and
// STATETREE_* environment variables (e.g. STATETREE_LOGGER_LEVEL=debug).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("STATETREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	return NewConfigFromViper(v)
}

// Validate rejects configurations that would make the client misbehave in
// ways that are hard to diagnose at the point of failure.
func (c *Config) Validate() error {
	if c.Client.PollInterval <= 0 {
		return fmt.Errorf("client.poll_interval must be positive, got %s", c.Client.PollInterval)
	}
	if c.Client.WaitTimeout < 0 {
		return fmt.Errorf("client.wait_timeout must not be negative, got %s", c.Client.WaitTimeout)
	}
	if c.Search.PollInterval <= 0 {
		return fmt.Errorf("search.poll_interval must be positive, got %s", c.Search.PollInterval)
	}
	if c.Search.ProbeConcurrency <= 0 {
		return fmt.Errorf("search.probe_concurrency must be positive, got %d", c.Search.ProbeConcurrency)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be \"console\" or \"json\", got %q", c.Logger.Format)
	}
	return nil
}
