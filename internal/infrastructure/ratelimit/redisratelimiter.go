// Package ratelimit implements a sliding-window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/connecthub/connecthub/internal/shared/biztime"
)

type Limiter interface {
	// Allow records one request for key and reports whether it fits the window.
	Allow(ctx context.Context, key string) (allowed bool, remaining int64, err error)
	Reset(ctx context.Context, key string) error
}

// RedisRateLimiter keeps one sorted set per key scored by request time.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

func (l *RedisRateLimiter) key(identifier string) string {
	return "ratelimit:" + identifier
}

func (l *RedisRateLimiter) Allow(ctx context.Context, identifier string) (bool, int64, error) {
	now := biztime.NowUTC().UnixNano()
	windowStart := now - l.window.Nanoseconds()
	key := l.key(identifier)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.Expire(ctx, key, l.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	used := count.Val() + 1
	remaining := int64(l.limit) - used
	if remaining < 0 {
		remaining = 0
	}
	return used <= int64(l.limit), remaining, nil
}

func (l *RedisRateLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.client.Del(ctx, l.key(identifier)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
