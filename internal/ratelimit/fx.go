package ratelimit

import (
	"github.com/nalotext/smsmargin/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("ratelimit",
	fx.Provide(
		NewRedisClient,
		NewTokenBucket,
		NewBulkLimiterFromConfig,
	),
)

// NewRedisClient returns nil when no redis address is configured, which
// disables rate limiting entirely.
func NewRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

func NewBulkLimiterFromConfig(bucket *TokenBucket, cfg config.Config) *BulkLimiter {
	return NewBulkLimiter(bucket, cfg.BulkCalculateRate, cfg.BulkCalculateBurst)
}
