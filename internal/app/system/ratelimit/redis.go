// internal/app/system/ratelimit/redis.go
package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter is a fixed-window Throttle shared by every server instance
// pointing at the same Redis.
type RedisLimiter struct {
	client   *redis.Client
	prefix   string
	limit    int64
	duration time.Duration
}

// NewRedis creates a Redis-backed throttle. Keys are stored under prefix.
func NewRedis(client *redis.Client, prefix string, limit int, duration time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   prefix,
		limit:    int64(limit),
		duration: duration,
	}
}

// Allow implements Throttle.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// First hit opens the window.
		if err := l.client.Expire(ctx, k, l.duration).Err(); err != nil {
			return false, err
		}
	}
	return n <= l.limit, nil
}

// Reset implements Throttle.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
