package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("pricing", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/totals", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/api/v1/orders/totals"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	total := testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodPost, "/api/v1/orders/totals", "204"))
	require.Equal(t, float64(1), total)
	require.NotZero(t, testutil.CollectAndCount(metrics.Latency))
	require.Zero(t, testutil.ToFloat64(metrics.InFlight))
}

func TestHTTPMetricsUnmatchedRoute(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("pricing", nil, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for _, target := range []string{"/nope", "/also/nope"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	// Both scans land under one label.
	total := testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "unmatched", "404"))
	require.Equal(t, float64(2), total)
}

func TestNewHTTPMetricsReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("pricing", nil, registry)
	second := obs.NewHTTPMetrics("pricing", nil, registry)

	first.Requests.WithLabelValues(http.MethodGet, "/api/v1/context", "200").Inc()
	total := testutil.ToFloat64(second.Requests.WithLabelValues(http.MethodGet, "/api/v1/context", "200"))
	require.Equal(t, float64(1), total)
}

func TestStatusRecorderFirstStatusWins(t *testing.T) {
	rr := httptest.NewRecorder()
	recorder := obs.NewStatusRecorder(rr)
	recorder.WriteHeader(http.StatusUnprocessableEntity)
	recorder.WriteHeader(http.StatusOK)
	_, _ = recorder.Write([]byte("body"))

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Status())
	require.Equal(t, int64(4), recorder.BytesWritten())
}

func TestParseBucketsCSV(t *testing.T) {
	require.Equal(t, []float64{1, 5, 25}, obs.ParseBucketsCSV("1, 5,25"))
	require.Nil(t, obs.ParseBucketsCSV(""))
	require.Equal(t, []float64{10}, obs.ParseBucketsCSV("abc,-5,10"))
}
