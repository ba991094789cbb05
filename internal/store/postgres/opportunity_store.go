package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resellarb/arbscan/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const opportunityColumns = `
	id, user_id, product_name,
	source_price, destination_price,
	source_url, destination_url, image_url,
	source_seller, destination_seller,
	source_fee, destination_fee, shipping_cost,
	total_cost, net_profit, roi, similarity,
	source_external_id, destination_external_id,
	status, discovered_at`

// ExistsActive reports whether an active opportunity already exists for the
// (user, source listing, destination listing) tuple.
func (s *OpportunityStore) ExistsActive(ctx context.Context, userID, sourceExternalID, destinationExternalID string) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM opportunities
			WHERE user_id = $1
			  AND source_external_id = $2
			  AND destination_external_id = $3
			  AND status = 'active'
		)`

	var exists bool
	err := s.pool.QueryRow(ctx, query, userID, sourceExternalID, destinationExternalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: exists active opportunity: %w",
			errors.Join(domain.ErrRepositoryUnavailable, err))
	}
	return exists, nil
}

// InsertBatch inserts the opportunities in a single batch and returns the
// ones actually written. Rows that collide with an existing active
// opportunity are skipped silently; the partial unique index is the
// authoritative dedup guard under concurrent scans.
func (s *OpportunityStore) InsertBatch(ctx context.Context, opps []domain.Opportunity) ([]domain.Opportunity, error) {
	if len(opps) == 0 {
		return nil, nil
	}

	const query = `
		INSERT INTO opportunities (` + opportunityColumns + `
		) VALUES (
			$1, $2, $3,
			$4, $5,
			$6, $7, $8,
			$9, $10,
			$11, $12, $13,
			$14, $15, $16, $17,
			$18, $19,
			$20, $21
		)
		ON CONFLICT (user_id, source_external_id, destination_external_id)
			WHERE status = 'active'
			DO NOTHING
		RETURNING id`

	batch := &pgx.Batch{}
	for _, o := range opps {
		batch.Queue(query,
			o.ID, o.UserID, o.ProductName,
			o.SourcePrice, o.DestinationPrice,
			o.SourceURL, o.DestinationURL, o.ImageURL,
			o.SourceSeller, o.DestinationSeller,
			o.SourceFee, o.DestinationFee, o.ShippingCost,
			o.TotalCost, o.NetProfit, o.ROI, o.Similarity,
			o.SourceExternalID, o.DestinationExternalID,
			string(o.Status), o.DiscoveredAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		var id string
		err := br.QueryRow().Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race to a concurrent scan; the tuple is already active.
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("postgres: insert opportunity %s: %w",
				o.DedupKey(), errors.Join(domain.ErrRepositoryUnavailable, err))
		}
		inserted = append(inserted, o)
	}
	return inserted, nil
}

// ListActive returns the user's active opportunities ordered by ROI
// descending.
func (s *OpportunityStore) ListActive(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Opportunity, error) {
	query := `
		SELECT ` + opportunityColumns + `
		FROM opportunities
		WHERE user_id = $1 AND status = 'active'
		ORDER BY roi DESC`

	args := []any{userID}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active opportunities: %w",
			errors.Join(domain.ErrRepositoryUnavailable, err))
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list active opportunities: %w",
			errors.Join(domain.ErrRepositoryUnavailable, err))
	}
	return opps, nil
}

// UpdateStatus transitions an opportunity owned by the user to the given
// status. Returns domain.ErrNotFound when no matching row exists.
func (s *OpportunityStore) UpdateStatus(ctx context.Context, id, userID string, status domain.OpportunityStatus) error {
	const query = `
		UPDATE opportunities
		SET status = $1
		WHERE id = $2 AND user_id = $3`

	tag, err := s.pool.Exec(ctx, query, string(status), id, userID)
	if err != nil {
		return fmt.Errorf("postgres: update opportunity %s status: %w",
			id, errors.Join(domain.ErrRepositoryUnavailable, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: update opportunity %s status: %w", id, domain.ErrNotFound)
	}
	return nil
}

// scanOpportunity scans a single row into a domain.Opportunity.
func scanOpportunity(row pgx.Row) (domain.Opportunity, error) {
	var o domain.Opportunity
	var status string
	err := row.Scan(
		&o.ID, &o.UserID, &o.ProductName,
		&o.SourcePrice, &o.DestinationPrice,
		&o.SourceURL, &o.DestinationURL, &o.ImageURL,
		&o.SourceSeller, &o.DestinationSeller,
		&o.SourceFee, &o.DestinationFee, &o.ShippingCost,
		&o.TotalCost, &o.NetProfit, &o.ROI, &o.Similarity,
		&o.SourceExternalID, &o.DestinationExternalID,
		&status, &o.DiscoveredAt,
	)
	if err != nil {
		return domain.Opportunity{}, err
	}
	o.Status = domain.OpportunityStatus(status)
	return o, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
