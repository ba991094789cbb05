package arbitrage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resellarb/arbscan/internal/domain"
)

// Deduplicator checks candidate opportunities against already-persisted ones
// by exact dedup-key lookup. A Redis seen-key cache, when present, short-cuts
// the repository read; the store's uniqueness constraint stays authoritative.
type Deduplicator struct {
	store  domain.OpportunityStore
	seen   domain.SeenCache // optional
	logger *slog.Logger
}

// NewDeduplicator creates a Deduplicator. seen may be nil, in which case
// every check goes to the store.
func NewDeduplicator(store domain.OpportunityStore, seen domain.SeenCache, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{
		store:  store,
		seen:   seen,
		logger: logger.With(slog.String("component", "dedup")),
	}
}

// IsNew reports whether no active opportunity with the given tuple is
// recorded yet. Store failures propagate so the caller can abandon the
// keyword being processed.
func (d *Deduplicator) IsNew(ctx context.Context, userID, sourceExternalID, destinationExternalID string) (bool, error) {
	key := domain.OpportunityDedupKey(userID, sourceExternalID, destinationExternalID)

	if d.seen != nil {
		hit, err := d.seen.Seen(ctx, key)
		if err != nil {
			// Cache trouble never fails a dedup check; fall through to the store.
			d.logger.DebugContext(ctx, "seen cache lookup failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else if hit {
			return false, nil
		}
	}

	exists, err := d.store.ExistsActive(ctx, userID, sourceExternalID, destinationExternalID)
	if err != nil {
		return false, fmt.Errorf("dedup: exists active %s: %w", key, err)
	}

	if exists && d.seen != nil {
		if err := d.seen.MarkSeen(ctx, key); err != nil {
			d.logger.DebugContext(ctx, "seen cache mark failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return !exists, nil
}
