package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/dittosync/pkg/idmap"
	"github.com/marmos91/dittosync/pkg/metrics"
)

func init() {
	metrics.RegisterIdmapMetricsConstructor(NewIdmapMetrics)
}

// idmapMetrics is the Prometheus implementation of idmap.Metrics.
type idmapMetrics struct {
	recorded    *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	applyPasses *prometheus.CounterVec
	remapped    *prometheus.CounterVec
	memoLookups *prometheus.CounterVec
}

// NewIdmapMetrics creates a new Prometheus-backed idmap.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewIdmapMetrics() idmap.Metrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	return &idmapMetrics{
		recorded: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittosync_idmap_recorded_ids_total",
				Help: "Ids added to outgoing catalogs",
			},
			[]string{"kind"}, // uid, gid
		),
		resolutions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittosync_idmap_resolutions_total",
				Help: "Decoded catalog records by resolution outcome",
			},
			[]string{"kind", "outcome"}, // mapped, numeric, no_group, passthrough
		),
		applyPasses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittosync_idmap_apply_passes_total",
				Help: "Batch apply passes",
			},
			[]string{"kind"},
		),
		remapped: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittosync_idmap_remapped_files_total",
				Help: "Files whose owner or group was rewritten",
			},
			[]string{"kind"},
		),
		memoLookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittosync_idmap_memo_lookups_total",
				Help: "Table lookups by memo result",
			},
			[]string{"kind", "result"}, // hit, miss
		),
	}
}

func (m *idmapMetrics) ObserveRecorded(kind idmap.Kind) {
	m.recorded.WithLabelValues(kind.String()).Inc()
}

func (m *idmapMetrics) ObserveResolution(kind idmap.Kind, outcome idmap.Outcome) {
	m.resolutions.WithLabelValues(kind.String(), string(outcome)).Inc()
}

func (m *idmapMetrics) ObserveApply(kind idmap.Kind, files int, memoHits, memoMisses uint64) {
	k := kind.String()
	m.applyPasses.WithLabelValues(k).Inc()
	m.remapped.WithLabelValues(k).Add(float64(files))
	m.memoLookups.WithLabelValues(k, "hit").Add(float64(memoHits))
	m.memoLookups.WithLabelValues(k, "miss").Add(float64(memoMisses))
}
