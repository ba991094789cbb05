// Package service contains the scan orchestration and opportunity
// management logic that sits between the marketplace clients and the stores.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/resellarb/arbscan/internal/arbitrage"
	"github.com/resellarb/arbscan/internal/domain"
)

// ScanConfig holds the tunable parameters for scan orchestration.
type ScanConfig struct {
	// MaxConcurrentKeywords bounds how many keywords are scanned in
	// parallel (default 5).
	MaxConcurrentKeywords int
	// LockTTL bounds how long a per-user scan lock may be held.
	LockTTL time.Duration
}

const (
	defaultMaxConcurrentKeywords = 5
	defaultLockTTL               = 10 * time.Minute
)

// ScanService runs a full detection pass: for each keyword it searches both
// marketplaces, matches listings by title similarity, prices the matched
// pairs, filters by the user's thresholds, deduplicates, and persists the
// survivors in one batch.
type ScanService struct {
	source      domain.CatalogClient
	destination domain.CatalogClient
	store       domain.OpportunityStore
	matcher     *arbitrage.Matcher
	calc        *arbitrage.Calculator
	dedup       *arbitrage.Deduplicator
	locks       domain.LockManager
	cfg         ScanConfig
	logger      *slog.Logger
}

// NewScanService creates a ScanService with all required dependencies.
// locks may be nil, in which case concurrent scans for the same user are
// not guarded.
func NewScanService(
	source domain.CatalogClient,
	destination domain.CatalogClient,
	store domain.OpportunityStore,
	matcher *arbitrage.Matcher,
	calc *arbitrage.Calculator,
	dedup *arbitrage.Deduplicator,
	locks domain.LockManager,
	cfg ScanConfig,
	logger *slog.Logger,
) *ScanService {
	if cfg.MaxConcurrentKeywords <= 0 {
		cfg.MaxConcurrentKeywords = defaultMaxConcurrentKeywords
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	return &ScanService{
		source:      source,
		destination: destination,
		store:       store,
		matcher:     matcher,
		calc:        calc,
		dedup:       dedup,
		locks:       locks,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "scan_service")),
	}
}

// Scan runs a detection pass for the user across all keywords in settings.
// Keywords are scanned concurrently up to MaxConcurrentKeywords; a failure
// on one keyword is recorded in the result and does not abort the others.
// The returned result lists the created opportunities sorted by ROI
// descending. A persistence failure is the scan's overall failure: the
// result carries what was gathered and the error is returned alongside it.
func (s *ScanService) Scan(ctx context.Context, userID string, settings domain.ScanSettings) (domain.ScanResult, error) {
	result := domain.ScanResult{
		KeywordCounts: make(map[string]int, len(settings.Keywords)),
		KeywordErrors: make(map[string]error),
		StartedAt:     time.Now().UTC(),
	}
	defer func() { result.Duration = time.Since(result.StartedAt) }()

	if len(settings.Keywords) == 0 {
		return result, nil
	}

	if s.locks != nil {
		unlock, err := s.locks.Acquire(ctx, "scan:user:"+userID, s.cfg.LockTTL)
		if err != nil {
			return result, fmt.Errorf("scan_service: acquire scan lock for %s: %w", userID, err)
		}
		defer unlock()
	}

	s.logger.InfoContext(ctx, "scan started",
		slog.String("user_id", userID),
		slog.Int("keywords", len(settings.Keywords)),
	)

	var (
		mu         sync.Mutex
		pending    []domain.Opportunity
		seenInScan = make(map[string]struct{})
	)

	g := &errgroup.Group{}
	g.SetLimit(s.cfg.MaxConcurrentKeywords)

	for _, keyword := range settings.Keywords {
		g.Go(func() error {
			opps, err := s.scanKeyword(ctx, userID, keyword, settings)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.KeywordErrors[keyword] = err
				result.KeywordCounts[keyword] = 0
				s.logger.WarnContext(ctx, "keyword scan failed",
					slog.String("user_id", userID),
					slog.String("keyword", keyword),
					slog.String("error", err.Error()),
				)
				return nil
			}

			// Overlapping keywords can surface the same listing pair twice
			// within one scan; the first keyword to report it wins.
			count := 0
			for _, o := range opps {
				key := o.DedupKey()
				if _, dup := seenInScan[key]; dup {
					continue
				}
				seenInScan[key] = struct{}{}
				pending = append(pending, o)
				count++
			}
			result.KeywordCounts[keyword] = count
			return nil
		})
	}
	_ = g.Wait()

	if len(pending) > 0 {
		inserted, err := s.store.InsertBatch(ctx, pending)
		result.Created = inserted
		if err != nil {
			return result, fmt.Errorf("scan_service: persist opportunities for %s: %w", userID, err)
		}
	}

	sort.SliceStable(result.Created, func(i, j int) bool {
		return result.Created[i].ROI > result.Created[j].ROI
	})

	s.logger.InfoContext(ctx, "scan finished",
		slog.String("user_id", userID),
		slog.Int("created", len(result.Created)),
		slog.Int("failed_keywords", len(result.KeywordErrors)),
		slog.Duration("elapsed", time.Since(result.StartedAt)),
	)
	return result, nil
}

// scanKeyword searches both marketplaces for one keyword and returns the
// new opportunities it produced. Both searches run concurrently; either
// failing fails the keyword.
func (s *ScanService) scanKeyword(ctx context.Context, userID, keyword string, settings domain.ScanSettings) ([]domain.Opportunity, error) {
	var sourceItems, destItems []domain.CatalogItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.source.Search(gctx, keyword)
		if err != nil {
			return fmt.Errorf("%s search: %w", s.source.Marketplace(), err)
		}
		sourceItems = items
		return nil
	})
	g.Go(func() error {
		items, err := s.destination.Search(gctx, keyword)
		if err != nil {
			return fmt.Errorf("%s search: %w", s.destination.Marketplace(), err)
		}
		destItems = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pairs := s.matcher.Match(sourceItems, destItems)

	var opps []domain.Opportunity
	for _, pair := range pairs {
		priced, ok := s.calc.Price(pair)
		if !ok {
			continue
		}
		if !arbitrage.MeetsThresholds(priced, settings) {
			continue
		}

		fresh, err := s.dedup.IsNew(ctx, userID, pair.Source.ExternalID, pair.Destination.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("dedup check: %w", err)
		}
		if !fresh {
			continue
		}

		opps = append(opps, buildOpportunity(userID, priced))
	}
	return opps, nil
}

// buildOpportunity assembles the persisted record from a priced pair.
func buildOpportunity(userID string, priced domain.PricedOpportunity) domain.Opportunity {
	src := priced.Pair.Source
	dst := priced.Pair.Destination

	imageURL := src.ImageURL
	if imageURL == "" {
		imageURL = dst.ImageURL
	}

	return domain.Opportunity{
		ID:                    uuid.New().String(),
		UserID:                userID,
		ProductName:           src.Title,
		SourcePrice:           src.Price,
		DestinationPrice:      dst.Price,
		SourceURL:             src.ListingURL,
		DestinationURL:        dst.ListingURL,
		ImageURL:              imageURL,
		SourceSeller:          src.SellerName,
		DestinationSeller:     dst.SellerName,
		SourceFee:             priced.SourceFee,
		DestinationFee:        priced.DestinationFee,
		ShippingCost:          priced.FulfillmentShipping,
		TotalCost:             priced.TotalCost,
		NetProfit:             priced.NetProfit,
		ROI:                   priced.ROI,
		Similarity:            priced.Pair.Similarity,
		SourceExternalID:      src.ExternalID,
		DestinationExternalID: dst.ExternalID,
		Status:                domain.OpportunityStatusActive,
		DiscoveredAt:          time.Now().UTC(),
	}
}
