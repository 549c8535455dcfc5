package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultWindow      = time.Minute
	defaultMaxAttempts = 10
)

// LoginLimiter is a fixed-window counter backed by Redis.
// Key format: login_attempts:<email>:<ip>
type LoginLimiter struct {
	client      *redis.Client
	window      time.Duration
	maxAttempts int64
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		window:      defaultWindow,
		maxAttempts: defaultMaxAttempts,
	}
}

// Allow records one attempt for key and reports whether the caller is
// still inside the window budget. The first attempt sets the window
// expiry. Every attempt counts; callers clear the counter with Reset
// once the attempt turns out to be legitimate.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "login_attempts:" + key

	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return n <= l.maxAttempts, nil
}

// Reset drops the counter for key, reopening the window.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, "login_attempts:"+key).Err(); err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}
