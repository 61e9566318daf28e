package prometheus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittosync/pkg/idmap"
	"github.com/marmos91/dittosync/pkg/metrics"
)

func TestNewIdmapMetricsDisabled(t *testing.T) {
	metrics.Disable()
	assert.Nil(t, NewIdmapMetrics())
	assert.Nil(t, metrics.NewIdmapMetrics())
}

func TestIdmapMetrics(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(metrics.Disable)

	m := metrics.NewIdmapMetrics()
	require.NotNil(t, m)
	im := m.(*idmapMetrics)

	m.ObserveRecorded(idmap.KindUser)
	m.ObserveRecorded(idmap.KindUser)
	m.ObserveResolution(idmap.KindGroup, idmap.OutcomeNoGroup)
	m.ObserveApply(idmap.KindUser, 3, 5, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(im.recorded.WithLabelValues("uid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(im.resolutions.WithLabelValues("gid", "no_group")))
	assert.Equal(t, 3.0, testutil.ToFloat64(im.remapped.WithLabelValues("uid")))
	assert.Equal(t, 5.0, testutil.ToFloat64(im.memoLookups.WithLabelValues("uid", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(im.memoLookups.WithLabelValues("uid", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(im.applyPasses.WithLabelValues("uid")))
}

func TestWriteTextfile(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(metrics.Disable)

	m := NewIdmapMetrics()
	m.ObserveRecorded(idmap.KindGroup)

	path := filepath.Join(t.TempDir(), "dittosync.prom")
	require.NoError(t, metrics.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `dittosync_idmap_recorded_ids_total{kind="gid"} 1`))
}
