package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.StatsRequests.WithLabelValues("ok").Inc()
	m.StatsRequests.WithLabelValues("ok").Inc()
	m.DBQueryErrors.WithLabelValues("postgres", "live").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatsRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("postgres", "live")))
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.DBQueryErrors.WithLabelValues("memory", "probe"))
	RecordDBQuery("memory", "probe", 0.01, errors.New("boom"))
	RecordDBQuery("memory", "probe", 0.01, nil)
	after := testutil.ToFloat64(DefaultMetrics.DBQueryErrors.WithLabelValues("memory", "probe"))
	assert.Equal(t, before+1, after)

	hitsBefore := testutil.ToFloat64(DefaultMetrics.CacheLookups.WithLabelValues("probe", "hit"))
	RecordCacheLookup("probe", true)
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(DefaultMetrics.CacheLookups.WithLabelValues("probe", "hit")))

	RecordReconstruction("live", 0.001, 10, 8)
	assert.Equal(t, 8.0, testutil.ToFloat64(DefaultMetrics.CatalogSize.WithLabelValues("filtered")))
}
