package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritype/veritype/internal/config"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	apperrors "github.com/veritype/veritype/pkg/errors"
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func newTestProducer() (*Producer, *mockWriter) {
	w := &mockWriter{}
	return NewProducerWithWriter(w, logging.NewNopLogger()), w
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(config.KafkaConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewProducer_Defaults(t *testing.T) {
	t.Parallel()

	p, err := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logging.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestPublish(t *testing.T) {
	t.Parallel()

	p, w := newTestProducer()
	err := p.Publish(context.Background(), "detection.completed", []byte("key"), []byte(`{"ok":true}`))
	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "detection.completed", w.messages[0].Topic)
	assert.Equal(t, []byte("key"), w.messages[0].Key)

	sent, failed, bytes := p.Metrics()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(0), failed)
	assert.Equal(t, int64(11), bytes)
}

func TestPublish_Validation(t *testing.T) {
	t.Parallel()

	p, _ := newTestProducer()
	assert.Error(t, p.Publish(context.Background(), "", nil, []byte("v")))
	assert.Error(t, p.Publish(context.Background(), "topic", nil, nil))
}

func TestPublish_WriteFailure(t *testing.T) {
	t.Parallel()

	p, w := newTestProducer()
	w.writeErr = errors.New("broker unreachable")

	err := p.Publish(context.Background(), "topic", nil, []byte("v"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeEventPublishFailed, apperrors.GetCode(err))

	_, failed, _ := p.Metrics()
	assert.Equal(t, int64(1), failed)
}

func TestPublish_AfterClose(t *testing.T) {
	t.Parallel()

	p, w := newTestProducer()
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.Publish(context.Background(), "topic", nil, []byte("v"))
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	p, _ := newTestProducer()
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
