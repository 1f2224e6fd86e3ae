package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete pindex configuration.
//
// This structure captures all configurable aspects of the server including:
//   - Logging configuration
//   - HTTP server settings
//   - Admin identity allow-list
//   - Record store selection and configuration (store-specific)
//   - Pin gateway selection and configuration (gateway-specific)
//   - Unpin retry collector settings
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (PINDEX_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Store Configuration Pattern:
// The Store and Gateway sections are type-keyed: the Type field selects the
// implementation and only the matching type-specific map is decoded.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains HTTP server settings
	Server ServerConfig `mapstructure:"server"`

	// Admins lists the identities with unconditional access to all records
	Admins []string `mapstructure:"admins" validate:"dive,required"`

	// Store specifies the record store type and type-specific configuration
	Store StoreConfig `mapstructure:"store"`

	// Gateway specifies the pin gateway type and type-specific configuration
	Gateway GatewayConfig `mapstructure:"gateway"`

	// GC contains unpin retry collector settings
	GC GCConfig `mapstructure:"gc"`

	// Metrics controls Prometheus metrics exposure
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the listen address
	Host string `mapstructure:"host" validate:"required"`

	// Port is the listen port
	Port int `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// RateLimit is the sustained requests-per-second limit (0 = unlimited)
	RateLimit uint `mapstructure:"rate_limit"`

	// RateBurst is the burst capacity for the rate limiter
	RateBurst uint `mapstructure:"rate_burst"`
}

// StoreConfig specifies record store configuration.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type StoreConfig struct {
	// Type specifies which record store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`
}

// GatewayConfig specifies pin gateway configuration.
type GatewayConfig struct {
	// Type specifies which gateway implementation to use
	// Valid values: memory, pinata, s3
	Type string `mapstructure:"type" validate:"required,oneof=memory pinata s3"`

	// Pinata contains Pinata-specific configuration
	// Only used when Type = "pinata"
	Pinata map[string]any `mapstructure:"pinata"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`
}

// GCConfig contains unpin retry collector settings.
type GCConfig struct {
	// Enabled controls whether background unpin retries run
	Enabled bool `mapstructure:"enabled"`

	// Interval is how often a retry pass runs
	Interval time.Duration `mapstructure:"interval" validate:"omitempty,gt=0"`

	// MaxAttempts is how many failures before a task is dropped
	MaxAttempts int `mapstructure:"max_attempts" validate:"gte=0"`

	// DryRun reports backlog size without unpinning
	DryRun bool `mapstructure:"dry_run"`
}

// MetricsConfig controls Prometheus metrics exposure.
type MetricsConfig struct {
	// Enabled exposes /metrics and enables per-request collection
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from file, environment and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the PINDEX_ prefix and underscores
	// Example: PINDEX_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("PINDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to on; ApplyDefaults cannot tell an explicit
	// false from an unset value.
	v.SetDefault("gc.enabled", true)
	v.SetDefault("metrics.enabled", true)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing file
// is acceptable: defaults and environment take over.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "pindex")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "pindex")
}

// WriteDefault writes a starter configuration file with the default values
// to path. Fails if the file already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	var cfg Config
	ApplyDefaults(&cfg)

	doc := map[string]any{
		"logging": map[string]any{
			"level": cfg.Logging.Level,
		},
		"server": map[string]any{
			"host":             cfg.Server.Host,
			"port":             cfg.Server.Port,
			"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
			"rate_limit":       cfg.Server.RateLimit,
			"rate_burst":       cfg.Server.RateBurst,
		},
		"admins": []string{},
		"store": map[string]any{
			"type": cfg.Store.Type,
			"badger": map[string]any{
				"path": "/var/lib/pindex/db",
			},
		},
		"gateway": map[string]any{
			"type": cfg.Gateway.Type,
			"pinata": map[string]any{
				"api_key":    "",
				"api_secret": "",
				"jwt":        "",
			},
		},
		"gc": map[string]any{
			"enabled":      cfg.GC.Enabled,
			"interval":     cfg.GC.Interval.String(),
			"max_attempts": cfg.GC.MaxAttempts,
		},
		"metrics": map[string]any{
			"enabled": cfg.Metrics.Enabled,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
