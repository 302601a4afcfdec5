// Package detection orchestrates the stylometric detector: validation,
// caching, the optional secondary-opinion oracle, event publication, and
// concurrent batch execution.
package detection

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/veritype/veritype/internal/config"
	"github.com/veritype/veritype/internal/domain/stylometry"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

// ─────────────────────────────────────────────────────────────────────────────
// Service interface and DTOs
// ─────────────────────────────────────────────────────────────────────────────

// Service is the application-level detection API used by the HTTP and CLI
// surfaces.
type Service interface {
	// Detect scores a single text. Blank input (empty or whitespace-only)
	// is rejected with an ErrCodeEmptyInput error.
	Detect(ctx context.Context, req *DetectRequest) (*DetectResponse, error)

	// DetectBatch scores every element of the batch independently. Elements
	// fail individually; the call itself fails only for an empty or oversized
	// batch. Item order always matches input order.
	DetectBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error)
}

// DetectRequest carries one text to score.
type DetectRequest struct {
	Text string `json:"text"`

	// IncludeOpinion asks for the secondary-opinion oracle verdict alongside
	// the heuristic result. The opinion is advisory; it never changes the
	// primary label or probability.
	IncludeOpinion bool `json:"include_opinion"`

	// Source labels the caller surface for logs and metrics ("http", "cli").
	Source string `json:"-"`
}

// DetectResponse is the outcome of a single-text detection.
type DetectResponse struct {
	RequestID string             `json:"request_id"`
	Result    *detection.Result  `json:"result"`
	Opinion   *detection.Opinion `json:"opinion,omitempty"`
	Cached    bool               `json:"cached"`
	Elapsed   time.Duration      `json:"-"`
}

// BatchRequest carries a batch of texts to score.
type BatchRequest struct {
	Texts  []string `json:"texts"`
	Source string   `json:"-"`
}

// BatchResponse is the outcome of a batch detection run.
type BatchResponse struct {
	RequestID string                `json:"request_id"`
	Items     []detection.BatchItem `json:"items"`
	Summary   detection.BatchSummary `json:"summary"`
	Elapsed   time.Duration          `json:"-"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

type service struct {
	detector stylometry.Detector
	cfg      config.DetectorConfig

	cache     ResultCache
	publisher EventPublisher
	oracle    Oracle

	logger  logging.Logger
	metrics *prometheus.AppMetrics

	// weightsDigest fingerprints the active weights and bias so cache keys
	// from a differently configured instance never collide.
	weightsDigest string
}

// ServiceOption customizes a Service.
type ServiceOption func(*service)

// WithCache wires a result cache. Defaults to a cache that never hits.
func WithCache(cache ResultCache) ServiceOption {
	return func(s *service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithPublisher wires an event publisher. Defaults to dropping events.
func WithPublisher(publisher EventPublisher) ServiceOption {
	return func(s *service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithOracle wires a secondary-opinion oracle. Defaults to disabled.
func WithOracle(oracle Oracle) ServiceOption {
	return func(s *service) {
		if oracle != nil {
			s.oracle = oracle
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger logging.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires application metrics.
func WithMetrics(metrics *prometheus.AppMetrics) ServiceOption {
	return func(s *service) { s.metrics = metrics }
}

// NewService builds the detection service around a detector. cfg must have
// had defaults applied.
func NewService(detector stylometry.Detector, cfg config.DetectorConfig, opts ...ServiceOption) Service {
	s := &service{
		detector:  detector,
		cfg:       cfg,
		cache:     NewNoopCache(),
		publisher: NewNoopPublisher(),
		oracle:    NewDisabledOracle(),
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.weightsDigest = digestWeights(detector.Weights(), detector.Bias())
	s.logger = s.logger.Named("detection")
	return s
}

// NewServiceFromConfig builds the service with a detector configured from
// cfg's weight and bias overrides.
func NewServiceFromConfig(cfg config.DetectorConfig, opts ...ServiceOption) Service {
	var detOpts []stylometry.Option
	if len(cfg.Weights) > 0 {
		weights := stylometry.ReferenceWeights()
		for name, w := range cfg.Weights {
			weights[name] = w
		}
		detOpts = append(detOpts, stylometry.WithWeights(weights))
	}
	if cfg.Bias != nil {
		detOpts = append(detOpts, stylometry.WithBias(*cfg.Bias))
	}
	return NewService(stylometry.NewDetector(detOpts...), cfg, opts...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Detect
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) Detect(ctx context.Context, req *DetectRequest) (*DetectResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()

	if req == nil {
		return nil, apperrors.InvalidParam("request must not be nil")
	}
	source := sourceOrDefault(req.Source)

	result, cached, err := s.scoreOne(ctx, req.Text, source)
	if err != nil {
		s.recordDetection(source, nil, 0, time.Since(start), err)
		return nil, err
	}

	resp := &DetectResponse{
		RequestID: requestID,
		Result:    result,
		Cached:    cached,
	}

	if req.IncludeOpinion {
		resp.Opinion = s.secondOpinion(ctx, req.Text)
	}

	resp.Elapsed = time.Since(start)
	s.recordDetection(source, result, utf8.RuneCountInString(req.Text), resp.Elapsed, nil)
	s.publishDetection(ctx, requestID, source, req.Text, result, resp.Elapsed)

	s.logger.Info("detection completed",
		logging.String("request_id", requestID),
		logging.String("label", string(result.Label)),
		logging.Float64("ai_probability", result.AIProbability),
		logging.Bool("cached", cached),
		logging.Duration("elapsed", resp.Elapsed),
	)
	return resp, nil
}

// scoreOne validates, consults the cache, and scores a single text.
func (s *service) scoreOne(ctx context.Context, text, source string) (*detection.Result, bool, error) {
	if strings.TrimSpace(text) == "" {
		return nil, false, apperrors.EmptyInput("text contains no usable content")
	}
	if max := s.cfg.MaxTextChars; max > 0 && utf8.RuneCountInString(text) > max {
		return nil, false, apperrors.New(apperrors.ErrCodeTextTooLarge,
			fmt.Sprintf("text exceeds the %d-character limit", max))
	}

	key := s.cacheKey(text)
	if result, ok := s.cacheGet(ctx, key); ok {
		s.recordCache(true)
		return result, true, nil
	}
	s.recordCache(false)

	result := s.detector.Predict(text)
	if err := s.cache.Set(ctx, key, result); err != nil {
		s.logger.Warn("result cache write failed", logging.Err(err))
	}
	return result, false, nil
}

func (s *service) cacheGet(ctx context.Context, key string) (*detection.Result, bool) {
	result, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("result cache read failed, treating as miss", logging.Err(err))
		return nil, false
	}
	return result, ok && result != nil
}

// secondOpinion asks the oracle and degrades gracefully: a disabled oracle
// yields a "disabled" opinion, any other failure an "unavailable" one.
func (s *service) secondOpinion(ctx context.Context, text string) *detection.Opinion {
	opinion, err := s.oracle.Classify(ctx, text)
	if err == nil && opinion != nil {
		opinion.Status = detection.OpinionOK
		return opinion
	}
	if apperrors.IsCode(err, apperrors.ErrCodeOracleDisabled) || apperrors.IsFeatureDisabled(err) {
		return &detection.Opinion{Status: detection.OpinionDisabled}
	}
	s.logger.Warn("secondary-opinion oracle failed",
		logging.String("provider", s.oracle.Provider()),
		logging.Err(err),
	)
	return &detection.Opinion{Status: detection.OpinionUnavailable}
}

// ─────────────────────────────────────────────────────────────────────────────
// DetectBatch
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) DetectBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()

	if req == nil {
		return nil, apperrors.InvalidParam("request must not be nil")
	}
	source := sourceOrDefault(req.Source)
	if len(req.Texts) == 0 {
		err := apperrors.New(apperrors.ErrCodeBatchEmpty, "batch contains no texts")
		s.recordBatch(source, 0, time.Since(start), err)
		return nil, err
	}
	if max := s.cfg.MaxBatchSize; max > 0 && len(req.Texts) > max {
		err := apperrors.New(apperrors.ErrCodeBatchTooLarge,
			fmt.Sprintf("batch of %d texts exceeds the limit of %d", len(req.Texts), max))
		s.recordBatch(source, len(req.Texts), time.Since(start), err)
		return nil, err
	}

	items := s.runBatch(ctx, req.Texts, source)
	if err := ctx.Err(); err != nil {
		wrapped := apperrors.Wrap(err, apperrors.ErrCodeTimeout, "batch detection canceled")
		s.recordBatch(source, len(req.Texts), time.Since(start), wrapped)
		return nil, wrapped
	}

	resp := &BatchResponse{
		RequestID: requestID,
		Items:     items,
		Summary:   detection.Summarize(items),
		Elapsed:   time.Since(start),
	}
	s.recordBatch(source, len(req.Texts), resp.Elapsed, nil)
	s.publishBatch(ctx, requestID, source, resp)

	s.logger.Info("batch detection completed",
		logging.String("request_id", requestID),
		logging.Int("total", resp.Summary.Total),
		logging.Int("ai_count", resp.Summary.AICount),
		logging.Int("human_count", resp.Summary.HumanCount),
		logging.Int("failed_count", resp.Summary.FailedCount),
		logging.Duration("elapsed", resp.Elapsed),
	)
	return resp, nil
}

// runBatch scores all texts with a bounded worker pool. items[i] always
// corresponds to texts[i].
func (s *service) runBatch(ctx context.Context, texts []string, source string) []detection.BatchItem {
	items := make([]detection.BatchItem, len(texts))
	concurrency := s.cfg.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, text := range texts {
		if ctx.Err() != nil {
			items[i] = detection.BatchItem{Index: i, Error: "canceled"}
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()
			s.gaugeWorkers(1)
			defer s.gaugeWorkers(-1)

			items[i] = s.scoreBatchElement(ctx, i, text, source)
		}(i, text)
	}
	wg.Wait()
	return items
}

func (s *service) scoreBatchElement(ctx context.Context, index int, text, source string) detection.BatchItem {
	result, _, err := s.scoreOne(ctx, text, source)
	if err != nil {
		s.recordDetection(source, nil, 0, 0, err)
		return detection.BatchItem{Index: index, Error: err.Error()}
	}
	s.recordDetection(source, result, utf8.RuneCountInString(text), 0, nil)
	return detection.BatchItem{Index: index, Result: result}
}

// ─────────────────────────────────────────────────────────────────────────────
// Events, metrics, cache keys
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) publishDetection(ctx context.Context, requestID, source, text string, result *detection.Result, elapsed time.Duration) {
	event := &DetectionCompletedEvent{
		RequestID:     requestID,
		Label:         string(result.Label),
		AIProbability: result.AIProbability,
		TextChars:     utf8.RuneCountInString(text),
		Source:        source,
		DurationMS:    elapsed.Milliseconds(),
	}
	if err := s.publisher.PublishDetectionCompleted(ctx, event); err != nil {
		s.logger.Warn("detection event publish failed", logging.Err(err))
	}
}

func (s *service) publishBatch(ctx context.Context, requestID, source string, resp *BatchResponse) {
	event := &BatchCompletedEvent{
		RequestID:  requestID,
		Total:      resp.Summary.Total,
		AICount:    resp.Summary.AICount,
		HumanCount: resp.Summary.HumanCount,
		Failed:     resp.Summary.FailedCount,
		Source:     source,
		DurationMS: resp.Elapsed.Milliseconds(),
	}
	if err := s.publisher.PublishBatchCompleted(ctx, event); err != nil {
		s.logger.Warn("batch event publish failed", logging.Err(err))
	}
}

func (s *service) recordDetection(source string, result *detection.Result, textChars int, elapsed time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	label := ""
	probability := 0.0
	if result != nil {
		label = string(result.Label)
		probability = result.AIProbability
	}
	prometheus.RecordDetection(s.metrics, source, label, probability, textChars, elapsed, err)
}

func (s *service) recordBatch(source string, size int, elapsed time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	prometheus.RecordBatch(s.metrics, source, size, elapsed, err)
}

func (s *service) recordCache(hit bool) {
	if s.metrics == nil {
		return
	}
	prometheus.RecordCacheAccess(s.metrics, "results", hit)
}

func (s *service) gaugeWorkers(delta float64) {
	if s.metrics == nil {
		return
	}
	s.metrics.BatchActiveWorkers.WithLabelValues().Add(delta)
}

// cacheKey hashes the text together with the active weight configuration.
func (s *service) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(s.weightsDigest + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func digestWeights(weights map[string]float64, bias float64) string {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "bias=%g", bias)
	for _, name := range names {
		fmt.Fprintf(&b, ";%s=%g", name, weights[name])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

func sourceOrDefault(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
