package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/morphit/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGeneration(core.StatusCompleted, 3, time.Millisecond)
		m.ObserveLaunch(true)
		m.ObserveHTTP("/generate", http.StatusOK, time.Millisecond)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestObserveGeneration(t *testing.T) {
	m := New()

	m.ObserveGeneration(core.StatusCompleted, 0, 10*time.Millisecond)
	m.ObserveGeneration(core.StatusCompleted, 2, 10*time.Millisecond)
	m.ObserveGeneration(core.StatusError, 0, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.generations.WithLabelValues("completed")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.generations.WithLabelValues("error")), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(m.missingParameters), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.generationDuration))
}

func TestObserveLaunchAndHTTP(t *testing.T) {
	m := New()

	m.ObserveLaunch(true)
	m.ObserveLaunch(false)
	m.ObserveLaunch(false)
	assert.InDelta(t, 1, testutil.ToFloat64(m.launches.WithLabelValues("success")), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(m.launches.WithLabelValues("failure")), 1e-9)

	m.ObserveHTTP("/generate", http.StatusRequestTimeout, time.Second)
	m.ObserveHTTP("", http.StatusNotFound, time.Millisecond)
	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequests.WithLabelValues("/generate", "408")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequests.WithLabelValues("unmatched", "404")), 1e-9)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveGeneration(core.StatusCompleted, 0, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `morphit_generations_total{status="completed"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
