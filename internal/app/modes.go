package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resellarb/arbscan/internal/arbitrage"
	"github.com/resellarb/arbscan/internal/domain"
	"github.com/resellarb/arbscan/internal/notify"
	"github.com/resellarb/arbscan/internal/service"
)

// buildScanService assembles the scan pipeline from wired dependencies.
func (a *App) buildScanService(deps *Dependencies) *service.ScanService {
	matcher := arbitrage.NewMatcher(a.cfg.Scan.MatchThreshold)
	calc := arbitrage.NewCalculator(nil, 0)
	dedup := arbitrage.NewDeduplicator(deps.Opportunities, deps.SeenCache, a.logger)

	return service.NewScanService(
		deps.Source,
		deps.Destination,
		deps.Opportunities,
		matcher,
		calc,
		dedup,
		deps.LockManager,
		service.ScanConfig{
			MaxConcurrentKeywords: a.cfg.Scan.MaxConcurrentKeywords,
		},
		a.logger,
	)
}

// ScanMode runs a single detection pass and exits.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	svc := a.buildScanService(deps)
	return a.runScan(ctx, deps, svc)
}

// WatchMode runs detection passes on a fixed interval until the context is
// cancelled. A failed pass is reported and the loop continues; the next tick
// gets a fresh chance.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Scan.Interval.Duration
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.Duration("interval", interval),
	)

	svc := a.buildScanService(deps)

	if err := a.runScan(ctx, deps, svc); err != nil {
		a.logger.ErrorContext(ctx, "scan pass failed",
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.InfoContext(ctx, "watch mode stopping")
			return nil
		case <-ticker.C:
			if err := a.runScan(ctx, deps, svc); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.ErrorContext(ctx, "scan pass failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// listPageSize caps how many opportunities list mode prints.
const listPageSize = 50

// ListMode prints the user's active opportunities, ordered by ROI descending,
// and exits.
func (a *App) ListMode(ctx context.Context, deps *Dependencies) error {
	userID := a.cfg.Scan.UserID
	a.logger.InfoContext(ctx, "starting list mode", slog.String("user_id", userID))

	svc := service.NewOpportunityService(deps.Opportunities, a.logger)
	opps, err := svc.ListActive(ctx, userID, domain.ListOpts{Limit: listPageSize})
	if err != nil {
		return fmt.Errorf("app: list opportunities: %w", err)
	}

	fmt.Println(notify.FormatOpportunities(opps))
	return nil
}

// runScan executes one detection pass, then archives and notifies per config.
// A scan already in flight for the same user (lock held) is skipped quietly.
func (a *App) runScan(ctx context.Context, deps *Dependencies, svc *service.ScanService) error {
	userID := a.cfg.Scan.UserID
	settings := domain.ScanSettings{
		Keywords:  a.cfg.Scan.Keywords,
		MinProfit: a.cfg.Scan.MinProfit,
		MinROI:    a.cfg.Scan.MinROI,
	}

	result, err := svc.Scan(ctx, userID, settings)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			a.logger.WarnContext(ctx, "scan already running for user, skipping",
				slog.String("user_id", userID),
			)
			return nil
		}
		a.notifyError(ctx, deps, err)
		return fmt.Errorf("app: scan: %w", err)
	}

	if a.cfg.Scan.ArchiveResults && deps.Archiver != nil {
		path, err := deps.Archiver.ArchiveScan(ctx, userID, result)
		if err != nil {
			a.logger.ErrorContext(ctx, "failed to archive scan",
				slog.String("error", err.Error()),
			)
		} else {
			a.logger.InfoContext(ctx, "scan archived", slog.String("path", path))
		}
	}

	a.notifyScan(ctx, deps, result)
	return nil
}

// notifyScan sends the post-scan notifications: a summary of the pass, plus a
// per-opportunity alert for each new find.
func (a *App) notifyScan(ctx context.Context, deps *Dependencies, result domain.ScanResult) {
	if err := deps.Notifier.Notify(ctx, "scan_complete",
		"Scan complete",
		notify.FormatScanSummary(result),
	); err != nil {
		a.logger.WarnContext(ctx, "scan_complete notification failed",
			slog.String("error", err.Error()),
		)
	}

	for _, opp := range result.Created {
		msg := fmt.Sprintf("%s\nBuy %.2f on eBay, sell %.2f on Amazon\nNet profit %.2f (ROI %.1f%%)\n%s",
			opp.ProductName, opp.SourcePrice, opp.DestinationPrice,
			opp.NetProfit, opp.ROI, opp.SourceURL)
		if err := deps.Notifier.Notify(ctx, "opportunity_found", "Opportunity found", msg); err != nil {
			a.logger.WarnContext(ctx, "opportunity notification failed",
				slog.String("error", err.Error()),
			)
		}
	}
}

func (a *App) notifyError(ctx context.Context, deps *Dependencies, scanErr error) {
	if err := deps.Notifier.Notify(ctx, "error", "Scan failed", scanErr.Error()); err != nil {
		a.logger.WarnContext(ctx, "error notification failed",
			slog.String("error", err.Error()),
		)
	}
}
