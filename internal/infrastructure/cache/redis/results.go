package redis

import (
	"context"

	apperrors "github.com/veritype/veritype/pkg/errors"
	"github.com/veritype/veritype/pkg/types/detection"
)

// resultCache adapts Cache to the application's ResultCache port. Keys are
// content hashes produced by the detection service; values are scored results.
type resultCache struct {
	cache Cache
}

// NewResultCache wraps a Cache as a detection result store.
func NewResultCache(cache Cache) *resultCache {
	return &resultCache{cache: cache}
}

func (r *resultCache) Get(ctx context.Context, key string) (*detection.Result, bool, error) {
	var result detection.Result
	err := r.cache.Get(ctx, resultKey(key), &result)
	if err == nil {
		return &result, true, nil
	}
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return nil, false, nil
	}
	return nil, false, err
}

func (r *resultCache) Set(ctx context.Context, key string, result *detection.Result) error {
	return r.cache.Set(ctx, resultKey(key), result, 0)
}

func resultKey(key string) string {
	return "result:" + key
}
