package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMetric(t *testing.T, m prometheus.Metric) *dto.Metric {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return &out
}

func requestCount(t *testing.T, service, method, path, status string) float64 {
	t.Helper()
	c, err := httpRequestsTotal.GetMetricWithLabelValues(service, method, path, status)
	require.NoError(t, err)
	return readMetric(t, c).GetCounter().GetValue()
}

func durationSamples(t *testing.T, service, method, path, status string) uint64 {
	t.Helper()
	o, err := httpRequestDuration.GetMetricWithLabelValues(service, method, path, status)
	require.NoError(t, err)
	m, ok := o.(prometheus.Metric)
	require.True(t, ok)
	return readMetric(t, m).GetHistogram().GetSampleCount()
}

func inFlight(t *testing.T, service string) float64 {
	t.Helper()
	g, err := httpRequestsInFlight.GetMetricWithLabelValues(service)
	require.NoError(t, err)
	return readMetric(t, g).GetGauge().GetValue()
}

func dashboardRouter(service string, h http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/api/v1/catalog/view", h)
	r.Put("/api/v1/criteria/{field}", h)
	return r
}

func TestPrometheusMetrics_LabelsByRoutePattern(t *testing.T) {
	r := dashboardRouter("metrics-pattern", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, field := range []string{"search", "category", "status"} {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/criteria/"+field, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, float64(3), requestCount(t, "metrics-pattern", "PUT", "/api/v1/criteria/{field}", "200"))
	assert.Equal(t, float64(0), requestCount(t, "metrics-pattern", "PUT", "/api/v1/criteria/search", "200"))
	assert.Equal(t, uint64(3), durationSamples(t, "metrics-pattern", "PUT", "/api/v1/criteria/{field}", "200"))
}

func TestPrometheusMetrics_StatusLabel(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status string
	}{
		{"explicit created", func(w http.ResponseWriter) { w.WriteHeader(http.StatusCreated) }, "201"},
		{"implicit ok", func(w http.ResponseWriter) { _, _ = w.Write([]byte("ok")) }, "200"},
		{"upstream failure", func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadGateway) }, "502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := "metrics-status-" + tt.status
			r := dashboardRouter(service, func(w http.ResponseWriter, r *http.Request) { tt.write(w) })

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/catalog/view", nil))

			assert.Equal(t, float64(1), requestCount(t, service, "GET", "/api/v1/catalog/view", tt.status))
		})
	}
}

func TestPrometheusMetrics_WithoutRouteContext(t *testing.T) {
	h := PrometheusMetrics("metrics-bare")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/refetch", nil))
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, float64(1), requestCount(t, "metrics-bare", "POST", "unknown", "202"))
}

func TestPrometheusMetrics_InFlight(t *testing.T) {
	var during float64
	r := dashboardRouter("metrics-inflight", func(w http.ResponseWriter, r *http.Request) {
		during = inFlight(t, "metrics-inflight")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/catalog/view", nil))

	assert.Equal(t, float64(1), during)
	assert.Equal(t, float64(0), inFlight(t, "metrics-inflight"))
}

func TestPrometheusMetrics_FlushReachesClient(t *testing.T) {
	r := dashboardRouter("metrics-flush", func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok)
		_, _ = w.Write([]byte("partial"))
		f.Flush()
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/view", nil))

	assert.True(t, rec.Flushed)
	assert.Equal(t, "partial", rec.Body.String())
}

type hijackableWriter struct {
	http.ResponseWriter
	hijacked bool
}

func (h *hijackableWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

// bareWriter implements neither http.Flusher nor http.Hijacker.
type bareWriter struct{ header http.Header }

func (b *bareWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }

func (b *bareWriter) WriteHeader(int) {}

func TestStatusWriter_Hijack(t *testing.T) {
	under := &hijackableWriter{ResponseWriter: httptest.NewRecorder()}
	rw := &statusWriter{ResponseWriter: under, statusCode: http.StatusOK}

	_, _, err := rw.Hijack()
	require.NoError(t, err)
	assert.True(t, under.hijacked)
}

func TestStatusWriter_UnsupportedUnderlying(t *testing.T) {
	rw := &statusWriter{ResponseWriter: &bareWriter{}, statusCode: http.StatusOK}

	assert.NotPanics(t, rw.Flush)
	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)

	rec := httptest.NewRecorder()
	_, _, err = (&statusWriter{ResponseWriter: rec}).Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
