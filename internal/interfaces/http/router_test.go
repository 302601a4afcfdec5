package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdetection "github.com/veritype/veritype/internal/application/detection"
	"github.com/veritype/veritype/internal/config"
	"github.com/veritype/veritype/internal/domain/stylometry"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/prometheus"
	"github.com/veritype/veritype/internal/interfaces/http/handlers"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "veritype",
		Subsystem: "test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	svc := appdetection.NewService(stylometry.NewDetector(), cfg.Detector,
		appdetection.WithMetrics(metrics))

	return NewRouter(RouterConfig{
		DetectHandler: handlers.NewDetectHandler(svc, logging.NewNopLogger()),
		HealthHandler: handlers.NewHealthHandler("test", map[string]handlers.CheckFunc{
			"detector": func(context.Context) error { return nil },
		}),
		Logger:    logging.NewNopLogger(),
		Metrics:   metrics,
		Collector: collector,
		Mode:      gin.TestMode,
	})
}

func TestRouter_DetectEndToEnd(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect",
		strings.NewReader(`{"text": "The weather turned colder late last night. Nobody expected snow!"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"label"`)
	assert.Contains(t, w.Body.String(), `"features"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_BatchEndToEnd(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect/batch",
		strings.NewReader(`{"texts": ["First text here.", "Second text there."]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"summary"`)
}

func TestRouter_Probes(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_Metrics(t *testing.T) {
	r := testRouter(t)

	// Drive one request through the middleware so the scrape has samples.
	seed := httptest.NewRequest(http.MethodPost, "/api/v1/detect",
		strings.NewReader(`{"text": "A short sample for the counter."}`))
	seed.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), seed)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "veritype_test_http_requests_total")
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
