package detection

import (
	"context"
	"sync"

	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

// ─────────────────────────────────────────────────────────────────────────────
// Mock: ResultCache
// ─────────────────────────────────────────────────────────────────────────────

type mockCache struct {
	mu       sync.Mutex
	store    map[string]*detection.Result
	getErr   error
	setErr   error
	getCalls int
	setCalls int
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string]*detection.Result)}
}

func (m *mockCache) Get(_ context.Context, key string) (*detection.Result, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	result, ok := m.store[key]
	return result, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, result *detection.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.store[key] = result
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Mock: EventPublisher
// ─────────────────────────────────────────────────────────────────────────────

type mockPublisher struct {
	mu         sync.Mutex
	detections []*DetectionCompletedEvent
	batches    []*BatchCompletedEvent
	publishErr error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{}
}

func (m *mockPublisher) PublishDetectionCompleted(_ context.Context, event *DetectionCompletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.detections = append(m.detections, event)
	return nil
}

func (m *mockPublisher) PublishBatchCompleted(_ context.Context, event *BatchCompletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.batches = append(m.batches, event)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// Mock: Oracle
// ─────────────────────────────────────────────────────────────────────────────

type mockOracle struct {
	opinion *detection.Opinion
	err     error
	calls   int
}

func (m *mockOracle) Classify(_ context.Context, _ string) (*detection.Opinion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.opinion, nil
}

func (m *mockOracle) Provider() string { return "mock" }

func disabledErr() error {
	return apperrors.New(apperrors.ErrCodeOracleDisabled, "oracle off")
}
