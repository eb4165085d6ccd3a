package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// hitScript increments the counter and starts the window on the first hit.
// A counter without TTL (left over from a crash between INCR and PEXPIRE) gets one too.
var hitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 or redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter keeps rate windows in Redis so several instances can share one budget.
// Backend errors are logged and the limiter fails open.
type RedisLimiter struct {
	redis  *redis.Client
	logger zerolog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(redisClient *redis.Client, logger zerolog.Logger) *RedisLimiter {
	return &RedisLimiter{
		redis:  redisClient,
		logger: logger,
	}
}

// RedisKey returns the Redis key used for a limiter key.
func RedisKey(key string) string {
	return RedisKeyPrefix + key
}

// TooManyAttempts implements Limiter.
func (t *RedisLimiter) TooManyAttempts(ctx context.Context, key string, maxAttempts int) bool {
	if t.Attempts(ctx, key) < maxAttempts {
		return false
	}

	t.logger.Warn().
		Str("key", key).
		Int("max_attempts", maxAttempts).
		Msg("Rate limit budget exhausted")

	rateLimitBlocksTotal.WithLabelValues(key).Inc()
	return true
}

// Hit implements Limiter.
func (t *RedisLimiter) Hit(ctx context.Context, key string, window time.Duration) {
	attempts, err := hitScript.Run(ctx, t.redis, []string{RedisKey(key)}, window.Milliseconds()).Int()
	if err != nil {
		rateLimitBackendErrorsTotal.WithLabelValues("hit").Inc()
		t.logger.Warn().Err(err).Str("key", key).Msg("Failed to record rate limit hit")
		return
	}

	rateLimitAttempts.WithLabelValues(key).Set(float64(attempts))
	t.logger.Debug().Str("key", key).Int("attempts", attempts).Msg("Rate limit hit recorded")
}

// AvailableIn implements Limiter.
func (t *RedisLimiter) AvailableIn(ctx context.Context, key string) time.Duration {
	ttl, err := t.redis.PTTL(ctx, RedisKey(key)).Result()
	if err != nil {
		rateLimitBackendErrorsTotal.WithLabelValues("available_in").Inc()
		t.logger.Warn().Err(err).Str("key", key).Msg("Failed to read rate limit window")
		return 0
	}

	// -2 (missing) and -1 (no expiry) come back as negative durations.
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Attempts implements Limiter.
func (t *RedisLimiter) Attempts(ctx context.Context, key string) int {
	attempts, err := t.redis.Get(ctx, RedisKey(key)).Int()
	if err != nil {
		if err != redis.Nil {
			rateLimitBackendErrorsTotal.WithLabelValues("attempts").Inc()
			t.logger.Warn().Err(err).Str("key", key).Msg("Failed to read rate limit attempts")
		}
		return 0
	}
	return attempts
}
