package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/resellarb/arbscan/internal/blob/s3"
	"github.com/resellarb/arbscan/internal/cache/redis"
	"github.com/resellarb/arbscan/internal/config"
	"github.com/resellarb/arbscan/internal/domain"
	"github.com/resellarb/arbscan/internal/notify"
	"github.com/resellarb/arbscan/internal/platform/amazon"
	"github.com/resellarb/arbscan/internal/platform/ebay"
	"github.com/resellarb/arbscan/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Store
	Opportunities domain.OpportunityStore

	// Caches
	SeenCache   domain.SeenCache
	LockManager domain.LockManager
	RateLimiter domain.RateLimiter

	// Blob storage (nil unless S3 is enabled)
	Archiver domain.ScanArchiver

	// Marketplace clients
	Source      domain.CatalogClient
	Destination domain.CatalogClient

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}
	deps.Opportunities = postgres.NewOpportunityStore(pgClient.Pool())

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.SeenCache = redis.NewSeenCache(redisClient, 0)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)

	// --- Marketplace clients ---
	deps.Source = ebay.New(ebay.Config{
		BaseURL:       cfg.Ebay.BaseURL,
		AppID:         cfg.Ebay.AppID,
		CertID:        cfg.Ebay.CertID,
		MarketplaceID: cfg.Ebay.MarketplaceID,
		SearchLimit:   cfg.Ebay.SearchLimit,
		RateLimit:     cfg.Ebay.RateLimit,
		Limiter:       deps.RateLimiter,
	})
	deps.Destination = amazon.New(amazon.Config{
		BaseURL:      cfg.Amazon.BaseURL,
		Marketplace:  cfg.Amazon.Marketplace,
		AccessKey:    cfg.Amazon.AccessKey,
		SecretKey:    cfg.Amazon.SecretKey,
		AssociateTag: cfg.Amazon.AssociateTag,
		ItemCount:    cfg.Amazon.ItemCount,
		RateLimit:    cfg.Amazon.RateLimit,
		Limiter:      deps.RateLimiter,
	})

	// --- S3 scan archives (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
