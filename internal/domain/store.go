package domain

import "context"

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// OpportunityStore persists detected opportunities. Implementations must
// enforce the uniqueness invariant: at most one active row per
// (userID, sourceExternalID, destinationExternalID) tuple. Failures surface
// as ErrRepositoryUnavailable.
type OpportunityStore interface {
	// ExistsActive reports whether an active opportunity with the given dedup
	// tuple is already recorded.
	ExistsActive(ctx context.Context, userID, sourceExternalID, destinationExternalID string) (bool, error)

	// InsertBatch stores the given opportunities in one batch and returns the
	// subset that was actually inserted. Rows that lose a uniqueness race to a
	// concurrent scan are skipped, not failed.
	InsertBatch(ctx context.Context, opps []Opportunity) ([]Opportunity, error)

	// ListActive returns a user's active opportunities ordered by ROI
	// descending.
	ListActive(ctx context.Context, userID string, opts ListOpts) ([]Opportunity, error)

	// UpdateStatus transitions one opportunity owned by the user. Returns
	// ErrNotFound when no such row exists.
	UpdateStatus(ctx context.Context, id, userID string, status OpportunityStatus) error
}
