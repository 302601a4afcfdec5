package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	"github.com/veritype/veritype/pkg/types/detection"
)

func newResultCacheWithMock(t *testing.T) (*resultCache, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	client := newClientFromRDB(db, logging.NewNopLogger())
	cache := NewCache(client, logging.NewNopLogger(), WithPrefix("vt:"), WithTTLJitter(0))
	return NewResultCache(cache), mock
}

func sampleResult() *detection.Result {
	return &detection.Result{
		Label:            detection.LabelHuman,
		AIProbability:    0.31,
		HumanProbability: 0.69,
		Features: detection.FeatureVector{
			detection.FeatureComplexity: 0.4,
			detection.FeatureEntropy:    0.8,
		},
	}
}

func TestResultCache_GetHit(t *testing.T) {
	rc, mock := newResultCacheWithMock(t)
	want := sampleResult()
	data, _ := json.Marshal(want)
	mock.ExpectGet("vt:result:abc123").SetVal(string(data))

	got, ok, err := rc.Get(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultCache_GetMiss(t *testing.T) {
	rc, mock := newResultCacheWithMock(t)
	mock.ExpectGet("vt:result:abc123").RedisNil()

	got, ok, err := rc.Get(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestResultCache_GetError(t *testing.T) {
	rc, mock := newResultCacheWithMock(t)
	mock.ExpectGet("vt:result:abc123").SetErr(errors.New("connection reset"))

	_, ok, err := rc.Get(context.Background(), "abc123")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestResultCache_Set(t *testing.T) {
	rc, mock := newResultCacheWithMock(t)
	result := sampleResult()
	data, _ := json.Marshal(result)
	mock.ExpectSet("vt:result:abc123", data, 15*time.Minute).SetVal("OK")

	require.NoError(t, rc.Set(context.Background(), "abc123", result))
	assert.NoError(t, mock.ExpectationsWereMet())
}
