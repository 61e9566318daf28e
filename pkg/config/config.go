package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the dittosync configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (DITTOSYNC_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Both peers of an exchange must agree on the mapping section: the catalog
// stream does not say which tables it carries.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Mapping controls which ownership is translated and how
	Mapping MappingConfig `mapstructure:"mapping" yaml:"mapping"`

	// Identity selects the host identity service
	Identity IdentityConfig `mapstructure:"identity" yaml:"identity"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint"`

	// Insecure disables TLS to the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// ShutdownTimeout bounds the span flush at exit
	// Default: 5s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0" yaml:"shutdown_timeout"`
}

// MetricsConfig controls Prometheus metrics.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics are collected
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Textfile is written in Prometheus text format after each command,
	// for the node exporter textfile collector. Empty disables the dump.
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

// Superuser modes for MappingConfig.Superuser.
const (
	SuperuserAuto   = "auto"
	SuperuserAlways = "always"
	SuperuserNever  = "never"
)

// MappingConfig controls identity translation.
type MappingConfig struct {
	// PreserveUID sends and applies the user table
	// Default: true
	PreserveUID *bool `mapstructure:"preserve_uid" yaml:"preserve_uid"`

	// PreserveGID sends and applies the group table
	// Default: true
	PreserveGID *bool `mapstructure:"preserve_gid" yaml:"preserve_gid"`

	// NumericIDs disables name translation; ids are used as-is
	NumericIDs bool `mapstructure:"numeric_ids" yaml:"numeric_ids"`

	// Superuser decides whether ownership is applied with superuser rules.
	// auto asks the identity service.
	// Default: auto
	Superuser string `mapstructure:"superuser" validate:"required,oneof=auto always never" yaml:"superuser"`

	// ByteOrder of the catalog integers: little or big
	// Default: little
	ByteOrder string `mapstructure:"byte_order" validate:"required,oneof=little big" yaml:"byte_order"`
}

// IdentityConfig selects the host identity service.
type IdentityConfig struct {
	// Source is "os" (host account database) or "static" (this file)
	// Default: os
	Source string `mapstructure:"source" validate:"required,oneof=os static" yaml:"source"`

	// CacheTTL caches directory lookups; 0 disables the cache
	// Default: 5m
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0" yaml:"cache_ttl"`

	// Static is the identity database used when Source is "static"
	Static StaticIdentityConfig `mapstructure:"static" yaml:"static,omitempty"`
}

// StaticIdentityConfig is a fixed identity database.
type StaticIdentityConfig struct {
	// Users maps user names to uids
	Users map[string]uint32 `mapstructure:"users" yaml:"users,omitempty"`

	// Groups maps group names to gids
	Groups map[string]uint32 `mapstructure:"groups" yaml:"groups,omitempty"`

	// MemberGroups is the group set reported for the process
	MemberGroups []uint32 `mapstructure:"member_groups" yaml:"member_groups,omitempty"`

	// Superuser is reported as the process privilege
	Superuser bool `mapstructure:"superuser" yaml:"superuser"`
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath searches the default location. A missing file is not
// an error: defaults and environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use DITTOSYNC_ prefix and underscores
	// Example: DITTOSYNC_MAPPING_NUMERIC_IDS=true
	v.SetEnvPrefix("DITTOSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper knows about.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// envKeys lists the scalar keys that can be set from the environment.
var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"telemetry.enabled",
	"telemetry.endpoint",
	"telemetry.insecure",
	"telemetry.sample_rate",
	"telemetry.shutdown_timeout",
	"metrics.enabled",
	"metrics.textfile",
	"mapping.preserve_uid",
	"mapping.preserve_gid",
	"mapping.numeric_ids",
	"mapping.superuser",
	"mapping.byte_order",
	"identity.source",
	"identity.cache_ttl",
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittosync")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittosync")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
