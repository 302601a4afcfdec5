package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdetection "github.com/veritype/veritype/internal/application/detection"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
)

func newTestPublisher() (*EventPublisher, *mockWriter) {
	producer, w := newTestProducer()
	pub := NewEventPublisher(producer, logging.NewNopLogger())
	pub.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return pub, w
}

func TestPublishDetectionCompleted(t *testing.T) {
	t.Parallel()

	pub, w := newTestPublisher()
	event := &appdetection.DetectionCompletedEvent{
		RequestID:     "req-1",
		Label:         "AI-written",
		AIProbability: 0.87,
		TextChars:     420,
		Source:        "http",
		DurationMS:    3,
	}
	require.NoError(t, pub.PublishDetectionCompleted(context.Background(), event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, TopicDetectionCompleted, msg.Topic)
	assert.Equal(t, []byte("req-1"), msg.Key)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.Equal(t, TopicDetectionCompleted, envelope.EventType)
	assert.Equal(t, "veritype", envelope.Source)
	assert.Equal(t, schemaVersion, envelope.SchemaVersion)
	assert.Equal(t, 2026, envelope.Timestamp.Year())

	var payload appdetection.DetectionCompletedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, *event, payload)
}

func TestPublishBatchCompleted(t *testing.T) {
	t.Parallel()

	pub, w := newTestPublisher()
	event := &appdetection.BatchCompletedEvent{
		RequestID:  "req-2",
		Total:      10,
		AICount:    6,
		HumanCount: 3,
		Failed:     1,
		Source:     "cli",
		DurationMS: 42,
	}
	require.NoError(t, pub.PublishBatchCompleted(context.Background(), event))
	require.Len(t, w.messages, 1)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &envelope))
	assert.Equal(t, TopicBatchCompleted, envelope.EventType)

	var payload appdetection.BatchCompletedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, *event, payload)
}

func TestEventPublisher_UniqueEventIDs(t *testing.T) {
	t.Parallel()

	pub, w := newTestPublisher()
	for i := 0; i < 3; i++ {
		require.NoError(t, pub.PublishDetectionCompleted(context.Background(),
			&appdetection.DetectionCompletedEvent{RequestID: "same"}))
	}
	seen := map[string]bool{}
	for _, msg := range w.messages {
		var envelope EventEnvelope
		require.NoError(t, json.Unmarshal(msg.Value, &envelope))
		assert.False(t, seen[envelope.EventID])
		seen[envelope.EventID] = true
	}
}

func TestEventPublisher_Close(t *testing.T) {
	t.Parallel()

	pub, w := newTestPublisher()
	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}
