package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds all application metrics for the detection service.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestSize     HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Detection layer
	DetectionsTotal        CounterVec
	DetectionDuration      HistogramVec
	DetectionTextChars     HistogramVec
	DetectionAIProbability HistogramVec
	BatchesTotal           CounterVec
	BatchSize              HistogramVec
	BatchDuration          HistogramVec
	BatchActiveWorkers     GaugeVec

	// Oracle layer
	OracleRequestsTotal  CounterVec
	OracleRequestDuration HistogramVec
	OracleRetriesTotal   CounterVec

	// Infrastructure layer
	CacheHitsTotal        CounterVec
	CacheMissesTotal      CounterVec
	CacheOperationDuration HistogramVec
	EventsPublishedTotal  CounterVec
	EventPublishDuration  HistogramVec

	// System health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultDetectDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultOracleDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultSizeBuckets           = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultBatchSizeBuckets      = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}
	DefaultProbabilityBuckets    = []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1}
)

// NewAppMetrics registers all metrics and returns the AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestSize = collector.RegisterHistogram("http_request_size_bytes", "HTTP request size", DefaultSizeBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Detection
	m.DetectionsTotal = collector.RegisterCounter("detections_total", "Single-text detections", "label", "status")
	m.DetectionDuration = collector.RegisterHistogram("detection_duration_seconds", "Single-text detection duration", DefaultDetectDurationBuckets, "source")
	m.DetectionTextChars = collector.RegisterHistogram("detection_text_chars", "Input text length in characters", DefaultSizeBuckets, "source")
	m.DetectionAIProbability = collector.RegisterHistogram("detection_ai_probability", "Distribution of AI probabilities", DefaultProbabilityBuckets, "source")
	m.BatchesTotal = collector.RegisterCounter("batches_total", "Batch detections", "source", "status")
	m.BatchSize = collector.RegisterHistogram("batch_size", "Texts per batch", DefaultBatchSizeBuckets, "source")
	m.BatchDuration = collector.RegisterHistogram("batch_duration_seconds", "Batch detection duration", DefaultHTTPDurationBuckets, "source")
	m.BatchActiveWorkers = collector.RegisterGauge("batch_active_workers", "Active batch workers")

	// Oracle
	m.OracleRequestsTotal = collector.RegisterCounter("oracle_requests_total", "Secondary-opinion oracle requests", "provider", "status")
	m.OracleRequestDuration = collector.RegisterHistogram("oracle_request_duration_seconds", "Oracle request duration", DefaultOracleDurationBuckets, "provider")
	m.OracleRetriesTotal = collector.RegisterCounter("oracle_retries_total", "Oracle request retries", "provider")

	// Infrastructure
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.CacheOperationDuration = collector.RegisterHistogram("cache_operation_duration_seconds", "Cache operation duration", DefaultDetectDurationBuckets, "cache", "operation")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Detection events published", "topic", "status")
	m.EventPublishDuration = collector.RegisterHistogram("event_publish_duration_seconds", "Event publish duration", DefaultHTTPDurationBuckets, "topic")

	// System health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, reqSize, respSize int64) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordDetection records one single-text detection outcome. source labels
// where the request came from ("http", "cli", "batch").
func RecordDetection(metrics *AppMetrics, source, label string, aiProbability float64, textChars int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.DetectionsTotal.WithLabelValues(label, status).Inc()
	metrics.DetectionDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err == nil {
		metrics.DetectionTextChars.WithLabelValues(source).Observe(float64(textChars))
		metrics.DetectionAIProbability.WithLabelValues(source).Observe(aiProbability)
	}
}

// RecordBatch records one batch detection run.
func RecordBatch(metrics *AppMetrics, source string, size int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.BatchesTotal.WithLabelValues(source, status).Inc()
	metrics.BatchSize.WithLabelValues(source).Observe(float64(size))
	metrics.BatchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordOracleCall records one secondary-opinion request.
func RecordOracleCall(metrics *AppMetrics, provider string, success bool, duration time.Duration, retries int) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.OracleRequestsTotal.WithLabelValues(provider, status).Inc()
	metrics.OracleRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if retries > 0 {
		metrics.OracleRetriesTotal.WithLabelValues(provider).Add(float64(retries))
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordEventPublish(metrics *AppMetrics, topic string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
	metrics.EventPublishDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
