package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resellarb/arbscan/internal/domain"
)

// defaultSeenTTL bounds how long a dedup key shadows the database check.
// Long enough to cover back-to-back scans, short enough that a pair whose
// opportunity was expired or sold becomes discoverable again.
const defaultSeenTTL = 24 * time.Hour

// SeenCache implements domain.SeenCache using plain Redis keys with a TTL.
// It fronts the database dedup check so repeated scans skip a round trip for
// tuples already known to be active.
type SeenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeenCache creates a SeenCache backed by the given Client. A ttl of zero
// falls back to the default.
func NewSeenCache(c *Client, ttl time.Duration) *SeenCache {
	if ttl <= 0 {
		ttl = defaultSeenTTL
	}
	return &SeenCache{rdb: c.Underlying(), ttl: ttl}
}

func seenKey(key string) string {
	return "seen:" + key
}

// Seen reports whether the dedup key has been marked within the TTL.
func (sc *SeenCache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := sc.rdb.Exists(ctx, seenKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: seen %s: %w", key, err)
	}
	return n > 0, nil
}

// MarkSeen records the dedup key, refreshing its TTL.
func (sc *SeenCache) MarkSeen(ctx context.Context, key string) error {
	if err := sc.rdb.Set(ctx, seenKey(key), "1", sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: mark seen %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SeenCache = (*SeenCache)(nil)
