package detection

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritype/veritype/internal/config"
	"github.com/veritype/veritype/internal/domain/stylometry"
	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

func testDetectorConfig() config.DetectorConfig {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg.Detector
}

func newTestService(opts ...ServiceOption) Service {
	return NewService(stylometry.NewDetector(), testDetectorConfig(), opts...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Detect
// ─────────────────────────────────────────────────────────────────────────────

func TestDetect_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	resp, err := svc.Detect(context.Background(), &DetectRequest{
		Text:   "The weather turned colder late last night. Nobody expected snow in April!",
		Source: "cli",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.RequestID)
	assert.False(t, resp.Cached)
	assert.Nil(t, resp.Opinion)
	assert.True(t, resp.Result.Features.Complete())
	assert.InDelta(t, 1.0, resp.Result.AIProbability+resp.Result.HumanProbability, 1e-9)
}

func TestDetect_BlankInputRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := svc.Detect(context.Background(), &DetectRequest{Text: text})
		require.Error(t, err)
		assert.True(t, apperrors.IsEmptyInput(err))
	}
}

func TestDetect_TextTooLarge(t *testing.T) {
	t.Parallel()

	cfg := testDetectorConfig()
	cfg.MaxTextChars = 10
	svc := NewService(stylometry.NewDetector(), cfg)

	_, err := svc.Detect(context.Background(), &DetectRequest{Text: strings.Repeat("a", 11)})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTextTooLarge, apperrors.GetCode(err))
}

func TestDetect_NilRequest(t *testing.T) {
	t.Parallel()

	_, err := newTestService().Detect(context.Background(), nil)
	assert.Error(t, err)
}

func TestDetect_CacheHit(t *testing.T) {
	t.Parallel()

	cache := newMockCache()
	svc := newTestService(WithCache(cache))
	text := "A perfectly ordinary sentence for the cache."

	first, err := svc.Detect(context.Background(), &DetectRequest{Text: text})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Detect(context.Background(), &DetectRequest{Text: text})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, 1, cache.setCalls)
}

func TestDetect_CacheErrorDegradesToMiss(t *testing.T) {
	t.Parallel()

	cache := newMockCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	svc := newTestService(WithCache(cache))

	resp, err := svc.Detect(context.Background(), &DetectRequest{Text: "Cache outage must not break scoring."})
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	require.NotNil(t, resp.Result)
}

func TestDetect_OpinionDisabledByDefault(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	resp, err := svc.Detect(context.Background(), &DetectRequest{
		Text:           "Ask for a second opinion with no oracle wired.",
		IncludeOpinion: true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Opinion)
	assert.Equal(t, detection.OpinionDisabled, resp.Opinion.Status)
}

func TestDetect_OpinionFromOracle(t *testing.T) {
	t.Parallel()

	oracle := &mockOracle{opinion: &detection.Opinion{
		Label:       detection.LabelAI,
		Probability: 0.91,
		Rationale:   "uniform sentence rhythm",
	}}
	svc := newTestService(WithOracle(oracle))

	resp, err := svc.Detect(context.Background(), &DetectRequest{
		Text:           "Some text for the oracle to judge.",
		IncludeOpinion: true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Opinion)
	assert.Equal(t, detection.OpinionOK, resp.Opinion.Status)
	assert.Equal(t, detection.LabelAI, resp.Opinion.Label)
	assert.Equal(t, 1, oracle.calls)
}

func TestDetect_OpinionUnavailableOnOracleFailure(t *testing.T) {
	t.Parallel()

	oracle := &mockOracle{err: errors.New("deadline exceeded")}
	svc := newTestService(WithOracle(oracle))

	resp, err := svc.Detect(context.Background(), &DetectRequest{
		Text:           "Oracle failure must not fail the detection.",
		IncludeOpinion: true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Opinion)
	assert.Equal(t, detection.OpinionUnavailable, resp.Opinion.Status)
	require.NotNil(t, resp.Result)
}

func TestDetect_OpinionNotRequestedSkipsOracle(t *testing.T) {
	t.Parallel()

	oracle := &mockOracle{opinion: &detection.Opinion{Label: detection.LabelHuman}}
	svc := newTestService(WithOracle(oracle))

	resp, err := svc.Detect(context.Background(), &DetectRequest{Text: "No opinion wanted."})
	require.NoError(t, err)
	assert.Nil(t, resp.Opinion)
	assert.Equal(t, 0, oracle.calls)
}

func TestDetect_PublishesEvent(t *testing.T) {
	t.Parallel()

	pub := newMockPublisher()
	svc := newTestService(WithPublisher(pub))

	_, err := svc.Detect(context.Background(), &DetectRequest{Text: "Event please.", Source: "http"})
	require.NoError(t, err)
	require.Len(t, pub.detections, 1)
	assert.Equal(t, "http", pub.detections[0].Source)
	assert.NotEmpty(t, pub.detections[0].Label)
}

func TestDetect_PublishFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	pub := newMockPublisher()
	pub.publishErr = errors.New("broker down")
	svc := newTestService(WithPublisher(pub))

	resp, err := svc.Detect(context.Background(), &DetectRequest{Text: "Still fine."})
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
}

func TestDetect_MatchesDetectorPrediction(t *testing.T) {
	t.Parallel()

	text := "The cat sat. The cat sat. The cat sat."
	svc := newTestService()
	resp, err := svc.Detect(context.Background(), &DetectRequest{Text: text})
	require.NoError(t, err)

	want := stylometry.NewDetector().Predict(text)
	assert.Equal(t, want, resp.Result)
}

// ─────────────────────────────────────────────────────────────────────────────
// DetectBatch
// ─────────────────────────────────────────────────────────────────────────────

func TestDetectBatch_EmptyRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.DetectBatch(context.Background(), &BatchRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBatchEmpty, apperrors.GetCode(err))
}

func TestDetectBatch_TooLargeRejected(t *testing.T) {
	t.Parallel()

	cfg := testDetectorConfig()
	cfg.MaxBatchSize = 2
	svc := NewService(stylometry.NewDetector(), cfg)

	_, err := svc.DetectBatch(context.Background(), &BatchRequest{Texts: []string{"a", "b", "c"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBatchTooLarge, apperrors.GetCode(err))
}

func TestDetectBatch_OrderPreserved(t *testing.T) {
	t.Parallel()

	texts := []string{
		"First text about something mundane and short.",
		"Second text, quite different! Much more lively?",
		"Third and final text of this little batch.",
	}
	svc := newTestService()
	resp, err := svc.DetectBatch(context.Background(), &BatchRequest{Texts: texts})
	require.NoError(t, err)
	require.Len(t, resp.Items, len(texts))

	d := stylometry.NewDetector()
	for i, item := range resp.Items {
		assert.Equal(t, i, item.Index)
		require.NotNil(t, item.Result, "item %d", i)
		assert.Equal(t, d.Predict(texts[i]), item.Result)
	}
}

func TestDetectBatch_BlankElementsFailIndividually(t *testing.T) {
	t.Parallel()

	texts := []string{"A valid text to score.", "   ", "Another valid one."}
	svc := newTestService()
	resp, err := svc.DetectBatch(context.Background(), &BatchRequest{Texts: texts})
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)

	assert.NotNil(t, resp.Items[0].Result)
	assert.Nil(t, resp.Items[1].Result)
	assert.NotEmpty(t, resp.Items[1].Error)
	assert.NotNil(t, resp.Items[2].Result)

	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.FailedCount)
}

func TestDetectBatch_SummaryCounts(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	resp, err := svc.DetectBatch(context.Background(), &BatchRequest{
		Texts: []string{"One.", "Two.", "Three.", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.FailedCount)
	assert.Equal(t, 3, resp.Summary.AICount+resp.Summary.HumanCount)
}

func TestDetectBatch_PublishesBatchEvent(t *testing.T) {
	t.Parallel()

	pub := newMockPublisher()
	svc := newTestService(WithPublisher(pub))

	_, err := svc.DetectBatch(context.Background(), &BatchRequest{
		Texts:  []string{"one text", "two texts"},
		Source: "cli",
	})
	require.NoError(t, err)
	require.Len(t, pub.batches, 1)
	assert.Equal(t, 2, pub.batches[0].Total)
	assert.Equal(t, "cli", pub.batches[0].Source)
}

func TestDetectBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService()
	_, err := svc.DetectBatch(ctx, &BatchRequest{Texts: []string{"a text", "b text"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTimeout, apperrors.GetCode(err))
}

func TestDetectBatch_LargeBatchConcurrency(t *testing.T) {
	t.Parallel()

	texts := make([]string, 100)
	for i := range texts {
		texts[i] = "A reasonably ordinary sentence to keep every worker busy."
	}
	svc := newTestService()
	resp, err := svc.DetectBatch(context.Background(), &BatchRequest{Texts: texts})
	require.NoError(t, err)
	require.Len(t, resp.Items, 100)
	for i, item := range resp.Items {
		assert.Equal(t, i, item.Index)
		assert.NotNil(t, item.Result)
	}
	assert.Equal(t, 100, resp.Summary.AICount+resp.Summary.HumanCount)
}

// ─────────────────────────────────────────────────────────────────────────────
// Configuration overrides
// ─────────────────────────────────────────────────────────────────────────────

func TestNewServiceFromConfig_WeightOverrides(t *testing.T) {
	t.Parallel()

	cfg := testDetectorConfig()
	cfg.Weights = map[string]float64{detection.FeatureRepetition: 5.0}
	bias := -2.0
	cfg.Bias = &bias

	svc := NewServiceFromConfig(cfg)
	text := "word word word word word word"
	resp, err := svc.Detect(context.Background(), &DetectRequest{Text: text})
	require.NoError(t, err)

	weights := stylometry.ReferenceWeights()
	weights[detection.FeatureRepetition] = 5.0
	want := stylometry.NewDetector(
		stylometry.WithWeights(weights),
		stylometry.WithBias(bias),
	).Predict(text)
	assert.Equal(t, want, resp.Result)
}

func TestCacheKeyDependsOnWeights(t *testing.T) {
	t.Parallel()

	a := NewService(stylometry.NewDetector(), testDetectorConfig()).(*service)
	b := NewService(stylometry.NewDetector(stylometry.WithBias(0.5)), testDetectorConfig()).(*service)
	text := "same text, different configuration"
	assert.NotEqual(t, a.cacheKey(text), b.cacheKey(text))
	assert.Equal(t, a.cacheKey(text), a.cacheKey(text))
}
