package metrics

import "github.com/marmos91/dittosync/pkg/idmap"

// NewIdmapMetrics returns the Prometheus-backed idmap.Metrics, or nil when
// metrics are disabled. Pass the result straight to idmap.Options.
func NewIdmapMetrics() idmap.Metrics {
	if !IsEnabled() || newPrometheusIdmapMetrics == nil {
		return nil
	}
	return newPrometheusIdmapMetrics()
}

// newPrometheusIdmapMetrics is implemented in pkg/metrics/prometheus.
// This indirection avoids an import cycle.
var newPrometheusIdmapMetrics func() idmap.Metrics

// RegisterIdmapMetricsConstructor registers the Prometheus idmap metrics
// constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterIdmapMetricsConstructor(constructor func() idmap.Metrics) {
	newPrometheusIdmapMetrics = constructor
}
