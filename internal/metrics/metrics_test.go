package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LaborPulse/internal/recorder"
)

func TestMetrics_IndependentRegistries(t *testing.T) {
	// two instances in one process must not collide
	a := New("")
	b := New("")
	a.RecordRender("ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.DashboardRenders.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DashboardRenders.WithLabelValues("ok")))
}

func TestMetrics_RecordRun(t *testing.T) {
	m := New("test")
	m.RecordRun("update", "ok", 1.5, 4, 1700000000)
	m.RecordRun("update", "failed", 0.2, 0, 1800000000)
	m.RecordFetchFailure("CES0000000001", "transient")
	m.SetDatasetSize(map[string]int{"LNS14000000": 120})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdateRuns.WithLabelValues("update", "ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ObservationsAppended))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastSuccessfulUpdate))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues("CES0000000001", "transient")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.DatasetObservations.WithLabelValues("LNS14000000")))
}

func TestMetrics_FailedRunKeepsLastSuccess(t *testing.T) {
	m := New("test")
	m.RecordRun("update", recorder.StatusFailed, 0.2, 0, 1800000000)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastSuccessfulUpdate))

	for i, status := range []string{recorder.StatusOK, recorder.StatusNoop, recorder.StatusPartial} {
		ts := float64(1700000000 + i)
		m.RecordRun("update", status, 1, 0, ts)
		assert.Equal(t, ts, testutil.ToFloat64(m.LastSuccessfulUpdate), status)
	}
	m.RecordRun("update", recorder.StatusFailed, 0.2, 0, 1900000000)
	assert.Equal(t, 1700000002.0, testutil.ToFloat64(m.LastSuccessfulUpdate))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpdateRuns.WithLabelValues("update", recorder.StatusFailed)))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("test")
	m.RecordRender("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `test_dashboard_renders_total{outcome="ok"} 1`))
}
