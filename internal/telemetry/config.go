package telemetry

import (
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DefaultShutdownTimeout bounds the final span flush of a CLI run.
const DefaultShutdownTimeout = 5 * time.Second

// Config selects where mapping spans go. A zero Config disables tracing.
type Config struct {
	Enabled bool

	// ServiceName and ServiceVersion become the service.* resource
	// attributes of every span.
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address, host:port.
	Endpoint string
	Insecure bool

	// SampleRate is the fraction of root spans kept. 1 keeps all, 0 none.
	SampleRate float64

	// ShutdownTimeout bounds the flush performed by the shutdown function
	// Init returns. Zero means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns tracing settings for a local collector, disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:     "dittosync",
		ServiceVersion:  "dev",
		Endpoint:        "localhost:4317",
		Insecure:        true,
		SampleRate:      1.0,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func (c Config) exporterOptions() []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.Endpoint)}
	if c.Insecure {
		opts = append(opts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	return opts
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return DefaultShutdownTimeout
	}
	return c.ShutdownTimeout
}
