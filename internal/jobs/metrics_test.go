package jobmetrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/qcm-suite/qcm/internal/jobs"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := jobmetrics.NewMetrics(reg)

	require.NoError(t, m.Track("reference_warmup").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("reference_warmup").End(boom), boom)
	m.Warmed("units", nil)
	m.Warmed("plants", boom)

	count, err := testutil.GatherAndCount(reg, "qcm_jobs_total", "qcm_jobs_failures_total", "qcm_reference_warmups_total")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *jobmetrics.Metrics
	assert.NoError(t, m.Track("noop").End(nil))
	m.Warmed("units", nil)
}
