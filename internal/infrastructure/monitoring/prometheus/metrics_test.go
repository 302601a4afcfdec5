package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.DetectionsTotal)
	assert.NotNil(t, m.BatchSize)
	assert.NotNil(t, m.OracleRequestsTotal)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.EventsPublishedTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordHTTPRequest(m, "POST", "/api/v1/detect", 200, 25*time.Millisecond, 512, 1024)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "http_requests_total")
	assert.Contains(t, out, `status_code="200"`)
}

func TestRecordDetection_Success(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordDetection(m, "http", "AI-written", 0.82, 1200, time.Millisecond, nil)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "detections_total")
	assert.Contains(t, out, `label="AI-written"`)
	assert.Contains(t, out, `status="success"`)
	assert.Contains(t, out, "detection_ai_probability")
}

func TestRecordDetection_Failure(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordDetection(m, "http", "", 0, 0, time.Millisecond, errors.New("no usable input"))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `status="failure"`)
}

func TestRecordBatch(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordBatch(m, "cli", 42, 100*time.Millisecond, nil)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "batches_total")
	assert.Contains(t, out, "batch_size")
}

func TestRecordOracleCall(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordOracleCall(m, "gemini", false, 2*time.Second, 2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "oracle_requests_total")
	assert.Contains(t, out, `provider="gemini"`)
	assert.Contains(t, out, "oracle_retries_total")
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordCacheAccess(m, "results", true)
	RecordCacheAccess(m, "results", false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "cache_hits_total")
	assert.Contains(t, out, "cache_misses_total")
}

func TestRecordEventPublish(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordEventPublish(m, "detection.completed", time.Millisecond, nil)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "events_published_total")
	assert.Contains(t, out, `topic="detection.completed"`)
}

func TestRecordError(t *testing.T) {
	m, c := newTestAppMetrics(t)
	RecordError(m, "oracle", "ORC_002", "error")

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "errors_total")
	assert.Contains(t, out, `component="oracle"`)
}
