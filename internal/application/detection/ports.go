package detection

import (
	"context"

	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

// ─────────────────────────────────────────────────────────────────────────────
// Outbound ports
// ─────────────────────────────────────────────────────────────────────────────

// ResultCache stores scored results keyed by content hash.  A miss is
// reported via the ok flag, not an error; errors are reserved for transport
// failures and are treated as misses by the service.
type ResultCache interface {
	Get(ctx context.Context, key string) (*detection.Result, bool, error)
	Set(ctx context.Context, key string, result *detection.Result) error
}

// EventPublisher emits detection lifecycle events to the event stream.
type EventPublisher interface {
	PublishDetectionCompleted(ctx context.Context, event *DetectionCompletedEvent) error
	PublishBatchCompleted(ctx context.Context, event *BatchCompletedEvent) error
	Close() error
}

// Oracle is the optional external generative secondary check.  It classifies
// a text independently of the heuristic core; its verdict is advisory and is
// never blended into the primary score.
type Oracle interface {
	// Classify returns the oracle's opinion for text.  Implementations must
	// honour ctx cancellation.  A disabled oracle returns an
	// ErrCodeFeatureDisabled error.
	Classify(ctx context.Context, text string) (*detection.Opinion, error)

	// Provider names the backing service for logs and metrics.
	Provider() string
}

// DetectionCompletedEvent is emitted after every successful single-text
// detection.
type DetectionCompletedEvent struct {
	RequestID     string  `json:"request_id"`
	Label         string  `json:"label"`
	AIProbability float64 `json:"ai_probability"`
	TextChars     int     `json:"text_chars"`
	Source        string  `json:"source"`
	DurationMS    int64   `json:"duration_ms"`
}

// BatchCompletedEvent is emitted after every batch run.
type BatchCompletedEvent struct {
	RequestID  string `json:"request_id"`
	Total      int    `json:"total"`
	AICount    int    `json:"ai_count"`
	HumanCount int    `json:"human_count"`
	Failed     int    `json:"failed"`
	Source     string `json:"source"`
	DurationMS int64  `json:"duration_ms"`
}

// ─────────────────────────────────────────────────────────────────────────────
// No-op defaults
// ─────────────────────────────────────────────────────────────────────────────

// noopCache satisfies ResultCache when no cache backend is configured.
type noopCache struct{}

func (noopCache) Get(_ context.Context, _ string) (*detection.Result, bool, error) {
	return nil, false, nil
}

func (noopCache) Set(_ context.Context, _ string, _ *detection.Result) error { return nil }

// NewNoopCache returns a ResultCache that never hits.
func NewNoopCache() ResultCache { return noopCache{} }

// noopPublisher satisfies EventPublisher when no event stream is configured.
type noopPublisher struct{}

func (noopPublisher) PublishDetectionCompleted(_ context.Context, _ *DetectionCompletedEvent) error {
	return nil
}

func (noopPublisher) PublishBatchCompleted(_ context.Context, _ *BatchCompletedEvent) error {
	return nil
}

func (noopPublisher) Close() error { return nil }

// NewNoopPublisher returns an EventPublisher that drops all events.
func NewNoopPublisher() EventPublisher { return noopPublisher{} }

// disabledOracle is the default Oracle: the secondary check is off until a
// real provider is wired in explicitly.
type disabledOracle struct{}

func (disabledOracle) Classify(_ context.Context, _ string) (*detection.Opinion, error) {
	return nil, apperrors.New(apperrors.ErrCodeOracleDisabled, "secondary-opinion oracle is disabled")
}

func (disabledOracle) Provider() string { return "disabled" }

// NewDisabledOracle returns the always-off Oracle.
func NewDisabledOracle() Oracle { return disabledOracle{} }
