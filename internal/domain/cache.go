package domain

import (
	"context"
	"time"
)

// SeenCache remembers dedup keys of recently persisted opportunities so the
// engine can skip a repository round-trip. It is an optimization only; the
// store's uniqueness constraint remains the authoritative guard.
type SeenCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkSeen(ctx context.Context, key string) error
}

// LockManager provides distributed locks. Acquire returns an unlock function
// on success, or ErrLockHeld when the lock belongs to another holder.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RateLimiter throttles outbound marketplace calls. Allow counts a request
// against the key's sliding window; Wait blocks until a slot is free or the
// context is cancelled. Each marketplace client supplies its own limit and
// window, so eBay and Amazon can run at their configured rates independently.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string, limit int, window time.Duration) error
}
