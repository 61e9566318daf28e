package config

import (
	"encoding/binary"
	"fmt"

	"github.com/marmos91/dittosync/internal/logger"
	"github.com/marmos91/dittosync/internal/protocol/wire"
	"github.com/marmos91/dittosync/internal/telemetry"
	"github.com/marmos91/dittosync/pkg/hostid"
	"github.com/marmos91/dittosync/pkg/idmap"
)

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// TracerConfig returns the tracer settings for the given build version.
func (c *Config) TracerConfig(version string) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.Enabled = c.Telemetry.Enabled
	tc.Endpoint = c.Telemetry.Endpoint
	tc.Insecure = c.Telemetry.Insecure
	tc.SampleRate = c.Telemetry.SampleRate
	if c.Telemetry.ShutdownTimeout > 0 {
		tc.ShutdownTimeout = c.Telemetry.ShutdownTimeout
	}
	if version != "" {
		tc.ServiceVersion = version
	}
	return tc
}

// DirectoryOptions returns the identity service settings.
func (c *Config) DirectoryOptions() hostid.Options {
	s := c.Identity.Static
	return hostid.Options{
		Source:   c.Identity.Source,
		CacheTTL: c.Identity.CacheTTL,
		Static: hostid.StaticConfig{
			Users:        s.Users,
			Groups:       s.Groups,
			MemberGroups: s.MemberGroups,
			Superuser:    s.Superuser,
		},
	}
}

// SessionOptions returns the identity mapping settings. metrics may be nil.
func (c *Config) SessionOptions(metrics idmap.Metrics) (idmap.Options, error) {
	m := c.Mapping
	opts := idmap.Options{
		PreserveUID: m.PreserveUID == nil || *m.PreserveUID,
		PreserveGID: m.PreserveGID == nil || *m.PreserveGID,
		NumericIDs:  m.NumericIDs,
		Metrics:     metrics,
	}

	switch m.Superuser {
	case "", SuperuserAuto:
	case SuperuserAlways:
		opts.Superuser = boolPtr(true)
	case SuperuserNever:
		opts.Superuser = boolPtr(false)
	default:
		return idmap.Options{}, fmt.Errorf("invalid mapping.superuser %q", m.Superuser)
	}
	return opts, nil
}

// ByteOrder returns the catalog integer byte order.
func (c *Config) ByteOrder() (binary.ByteOrder, error) {
	return wire.ParseByteOrder(c.Mapping.ByteOrder)
}
