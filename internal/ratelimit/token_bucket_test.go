package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 4*time.Second, bucketTTL(5, 10))
	assert.Equal(t, 20*time.Second, bucketTTL(1, 10))
	assert.Equal(t, 1*time.Second, bucketTTL(100, 1))
}

func TestCasts(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(2), castToInt(2.7))
	assert.Equal(t, int64(0), castToInt("nope"))

	assert.Equal(t, 1.5, castToFloat(1.5))
	assert.Equal(t, 3.0, castToFloat(int64(3)))
	assert.Equal(t, 0.0, castToFloat(nil))
}

func TestTokenBucketRequiresClient(t *testing.T) {
	assert.Nil(t, NewTokenBucket(nil))

	var bucket *TokenBucket
	_, err := bucket.Allow(context.Background(), "key", 1, 1)
	assert.Error(t, err)
}

func TestBulkLimiterDisabled(t *testing.T) {
	cases := []*BulkLimiter{
		nil,
		NewBulkLimiter(nil, 10, 5),
		NewBulkLimiter(&TokenBucket{}, 0, 5),
		NewBulkLimiter(&TokenBucket{}, 10, 0),
	}
	for _, limiter := range cases {
		assert.False(t, limiter.Enabled())
		allowed, err := limiter.Allow(context.Background(), "reseller")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}
