package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestAndExposition(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/items/:id", http.StatusNotFound, 12*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/items/:id", http.StatusOK, 3*time.Millisecond)

	require.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `http_request_duration_seconds_count{method="GET",route="/items/:id",status_code="404"} 1`)
	require.Contains(t, body, "go_goroutines")
	require.Contains(t, body, "items_startup_state")
}

func TestMustRegisterDuplicatePanics(t *testing.T) {
	m := New()
	require.Panics(t, func() { m.MustRegister(m.StartupAttempts) })
}

type failingCollector struct{ desc *prometheus.Desc }

func (f failingCollector) Describe(ch chan<- *prometheus.Desc) { ch <- f.desc }
func (f failingCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.NewInvalidMetric(f.desc, errors.New("collector broke"))
}

func TestHandlerReportsGatherErrors(t *testing.T) {
	m := New()
	m.MustRegister(failingCollector{desc: prometheus.NewDesc("items_broken", "always fails", nil, nil)})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "collector broke")
}
