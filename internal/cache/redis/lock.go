package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/resellarb/arbscan/internal/domain"
)

// unlockLua deletes a lock key only when its value still matches the holder's
// token. Without the token check, a scan that outlives its lock TTL could
// release the lock a newer scan has since acquired.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// LockManager implements domain.LockManager with Redis SETNX. The scan
// service uses it to hold one "scan:user:<id>" lock per user, so overlapping
// watch-mode ticks and concurrent processes never run duplicate scans.
type LockManager struct {
	rdb      *redis.Client
	unlockSc *redis.Script
}

// NewLockManager creates a LockManager backed by the given Client.
func NewLockManager(c *Client) *LockManager {
	return &LockManager{
		rdb:      c.Underlying(),
		unlockSc: redis.NewScript(unlockLua),
	}
}

func lockKey(key string) string {
	return "lock:" + key
}

// Acquire takes the lock for key with the given TTL and returns an unlock
// function. The TTL is the upper bound on a scan's runtime; a crashed holder's
// lock expires on its own. Returns domain.ErrLockHeld when another holder owns
// the lock.
func (lm *LockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	lk := lockKey(key)

	ok, err := lm.rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	// The unlock closure is safe to call more than once.
	released := false
	unlock := func() {
		if released {
			return
		}
		released = true

		// Unlock on a fresh context so a cancelled scan still releases its
		// lock instead of leaving it to the TTL.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = lm.unlockSc.Run(unlockCtx, lm.rdb, []string{lk}, token).Err()
	}

	return unlock, nil
}

// Compile-time interface check.
var _ domain.LockManager = (*LockManager)(nil)
