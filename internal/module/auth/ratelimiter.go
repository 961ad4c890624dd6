package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/readmanga/server/internal/shared/middleware"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript counts requests inside the window and records the
// current one only when it fits under the limit.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local expiry = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)
	if current >= limit then
		return {0, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, expiry)

	return {1, limit - current - 1}
`)

// RateLimiter is a Redis-backed sliding window limiter shared by all
// server instances.
type RateLimiter struct {
	redis redis.UniversalClient
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client redis.UniversalClient) *RateLimiter {
	return &RateLimiter{redis: client, now: time.Now}
}

// Allow records a request against key and reports whether it is within limit.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*middleware.LimitResult, error) {
	now := r.now()
	windowStart := now.Add(-window).UnixNano()

	result, err := slidingWindowScript.Run(ctx, r.redis, []string{key},
		windowStart,
		now.UnixNano(),
		limit,
		window.Milliseconds()+1000,
		fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString()),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("rate limit check failed: unexpected reply %v", result)
	}

	allowed, _ := strconv.ParseInt(fmt.Sprint(result[0]), 10, 64)
	remaining, _ := strconv.ParseInt(fmt.Sprint(result[1]), 10, 64)
	if remaining < 0 {
		remaining = 0
	}

	return &middleware.LimitResult{
		Allowed:   allowed == 1,
		Remaining: remaining,
		ResetAt:   now.Add(window).Unix(),
		Limit:     int64(limit),
	}, nil
}

// Reset clears the counter for key.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.redis.Del(ctx, key).Err()
}
