package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	appdetection "github.com/veritype/veritype/internal/application/detection"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	apperrors "github.com/veritype/veritype/pkg/errors"
)

// Event stream topics.
const (
	TopicDetectionCompleted = "detection.completed"
	TopicBatchCompleted     = "detection.batch.completed"
)

const schemaVersion = "1.0"

// EventEnvelope is the wire format shared by all detection events.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// EventPublisher implements the application's event port on top of Producer.
type EventPublisher struct {
	producer *Producer
	logger   logging.Logger
	source   string
	now      func() time.Time
}

// NewEventPublisher wraps a Producer as a detection event publisher.
func NewEventPublisher(producer *Producer, log logging.Logger) *EventPublisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EventPublisher{
		producer: producer,
		logger:   log.Named("events"),
		source:   "veritype",
		now:      time.Now,
	}
}

func (p *EventPublisher) PublishDetectionCompleted(ctx context.Context, event *appdetection.DetectionCompletedEvent) error {
	return p.publish(ctx, TopicDetectionCompleted, event.RequestID, event)
}

func (p *EventPublisher) PublishBatchCompleted(ctx context.Context, event *appdetection.BatchCompletedEvent) error {
	return p.publish(ctx, TopicBatchCompleted, event.RequestID, event)
}

func (p *EventPublisher) Close() error {
	return p.producer.Close()
}

func (p *EventPublisher) publish(ctx context.Context, topic, key string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode event payload")
	}
	envelope := EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     topic,
		Source:        p.source,
		Timestamp:     p.now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       raw,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode event envelope")
	}
	return p.producer.Publish(ctx, topic, []byte(key), data)
}
