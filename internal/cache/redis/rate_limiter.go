package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resellarb/arbscan/internal/domain"
)

// slidingWindowLua atomically trims expired entries from a sorted-set window,
// counts the remainder, and records the request when under the limit.
// KEYS[1] = window key; ARGV = now (micros), window (micros), limit.
// Returns {allowed, current_count}.
const slidingWindowLua = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count < limit then
    redis.call('ZADD', key, now, now)
    redis.call('PEXPIRE', key, math.ceil(window / 1000))
    return {1, count + 1}
end
return {0, count}
`

const waitPollInterval = 50 * time.Millisecond

// RateLimiter implements domain.RateLimiter using a sliding-window approach
// backed by Redis sorted sets and an atomic Lua script. It throttles outbound
// marketplace API calls shared across scan workers.
type RateLimiter struct {
	rdb           *redis.Client
	slidingWindow *redis.Script
}

// NewRateLimiter creates a RateLimiter backed by the given Client.
func NewRateLimiter(c *Client) *RateLimiter {
	return &RateLimiter{
		rdb:           c.Underlying(),
		slidingWindow: redis.NewScript(slidingWindowLua),
	}
}

func rateLimitKey(key string) string {
	return "ratelimit:" + key
}

// Allow checks whether a request for the given key is permitted under the
// sliding window rate limit. It returns true if the request is allowed (and
// the request is counted), or false if the limit has been reached.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMicro()
	windowMicro := window.Microseconds()

	result, err := rl.slidingWindow.Run(
		ctx,
		rl.rdb,
		[]string{rateLimitKey(key)},
		now,
		windowMicro,
		limit,
	).Int64Slice()
	if err != nil {
		return false, fmt.Errorf("redis: rate limit allow %s: %w", key, err)
	}

	if len(result) < 2 {
		return false, fmt.Errorf("redis: rate limit allow %s: unexpected result length %d", key, len(result))
	}

	return result[0] == 1, nil
}

// Wait blocks until a request for the given key is allowed under the caller's
// limit and window. It polls at a fixed interval, returning an error if the
// context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context, key string, limit int, window time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis: rate limit wait %s: %w", key, ctx.Err())
		default:
		}

		allowed, err := rl.Allow(ctx, key, limit, window)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		// Sleep before retrying, but honour the context.
		timer := time.NewTimer(waitPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis: rate limit wait %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}
}

// Compile-time interface check.
var _ domain.RateLimiter = (*RateLimiter)(nil)
