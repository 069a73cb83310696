package ratelimit

import (
	"context"
	"fmt"
)

// BulkLimiter throttles bulk pricing per reseller. Disabled (nil bucket)
// means every request passes.
type BulkLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewBulkLimiter(bucket *TokenBucket, rate float64, burst int) *BulkLimiter {
	return &BulkLimiter{bucket: bucket, rate: rate, burst: burst}
}

func (l *BulkLimiter) Enabled() bool {
	return l != nil && l.bucket != nil && l.rate > 0 && l.burst > 0
}

func (l *BulkLimiter) Allow(ctx context.Context, resellerID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf("ratelimit:bulk-calculate:%s", resellerID)
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}
