package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resellarb/arbscan/internal/domain"
)

// OpportunityService exposes read and lifecycle operations over persisted
// opportunities.
type OpportunityService struct {
	store  domain.OpportunityStore
	logger *slog.Logger
}

// NewOpportunityService creates an OpportunityService backed by the store.
func NewOpportunityService(store domain.OpportunityStore, logger *slog.Logger) *OpportunityService {
	return &OpportunityService{
		store:  store,
		logger: logger.With(slog.String("component", "opportunity_service")),
	}
}

// ListActive returns the user's active opportunities ordered by ROI
// descending.
func (s *OpportunityService) ListActive(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Opportunity, error) {
	opps, err := s.store.ListActive(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("opportunity_service: list active for %s: %w", userID, err)
	}
	return opps, nil
}

// UpdateStatus transitions an opportunity to the given status after
// validating it. Marking an opportunity expired or sold frees its listing
// pair for rediscovery on later scans.
func (s *OpportunityService) UpdateStatus(ctx context.Context, id, userID string, status domain.OpportunityStatus) error {
	if !domain.ValidOpportunityStatus(status) {
		return fmt.Errorf("opportunity_service: update %s: invalid status %q", id, status)
	}
	if err := s.store.UpdateStatus(ctx, id, userID, status); err != nil {
		return fmt.Errorf("opportunity_service: update %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "opportunity status updated",
		slog.String("id", id),
		slog.String("user_id", userID),
		slog.String("status", string(status)),
	)
	return nil
}
