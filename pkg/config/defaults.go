package config

import (
	"strings"
	"time"

	"github.com/marmos91/dittosync/pkg/hostid"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMappingDefaults(&cfg.Mapping)
	applyIdentityDefaults(&cfg.Identity)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
}

// applyMappingDefaults preserves both owner and group unless told otherwise.
func applyMappingDefaults(cfg *MappingConfig) {
	if cfg.PreserveUID == nil {
		cfg.PreserveUID = boolPtr(true)
	}
	if cfg.PreserveGID == nil {
		cfg.PreserveGID = boolPtr(true)
	}
	if cfg.Superuser == "" {
		cfg.Superuser = SuperuserAuto
	}
	cfg.Superuser = strings.ToLower(cfg.Superuser)

	if cfg.ByteOrder == "" {
		cfg.ByteOrder = "little"
	}
	cfg.ByteOrder = strings.ToLower(cfg.ByteOrder)
}

// applyIdentityDefaults sets identity service defaults.
func applyIdentityDefaults(cfg *IdentityConfig) {
	if cfg.Source == "" {
		cfg.Source = hostid.SourceOS
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = hostid.DefaultCacheTTL
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func boolPtr(v bool) *bool { return &v }
