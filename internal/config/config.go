// Package config defines the top-level configuration for the arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/resellarb/arbscan/internal/arbitrage"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBSCAN_* environment variables.
type Config struct {
	Ebay     EbayConfig     `toml:"ebay"`
	Amazon   AmazonConfig   `toml:"amazon"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Scan     ScanConfig     `toml:"scan"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// EbayConfig holds eBay Browse API credentials and endpoint parameters.
type EbayConfig struct {
	BaseURL       string `toml:"base_url"`
	AppID         string `toml:"app_id"`
	CertID        string `toml:"cert_id"`
	MarketplaceID string `toml:"marketplace_id"`
	SearchLimit   int    `toml:"search_limit"`
	// RateLimit is the allowed searches per second, enforced via Redis.
	RateLimit int `toml:"rate_limit"`
}

// AmazonConfig holds Product Advertising API credentials.
type AmazonConfig struct {
	BaseURL      string `toml:"base_url"`
	Marketplace  string `toml:"marketplace"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	AssociateTag string `toml:"associate_tag"`
	ItemCount    int    `toml:"item_count"`
	RateLimit    int    `toml:"rate_limit"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for scan archives.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ScanConfig holds the scan parameters: what to search for and which
// economics an opportunity must clear to be kept.
type ScanConfig struct {
	UserID                string   `toml:"user_id"`
	Keywords              []string `toml:"keywords"`
	MinProfit             float64  `toml:"min_profit"`
	MinROI                float64  `toml:"min_roi"`
	MatchThreshold        float64  `toml:"match_threshold"`
	MaxConcurrentKeywords int      `toml:"max_concurrent_keywords"`
	// Interval is the pause between passes in watch mode.
	Interval       duration `toml:"interval"`
	ArchiveResults bool     `toml:"archive_results"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Ebay: EbayConfig{
			BaseURL:       "https://api.ebay.com",
			MarketplaceID: "EBAY_GB",
			SearchLimit:   50,
			RateLimit:     5,
		},
		Amazon: AmazonConfig{
			BaseURL:     "https://webservices.amazon.co.uk",
			Marketplace: "www.amazon.co.uk",
			ItemCount:   10,
			RateLimit:   1,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "arbscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbscan-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Scan: ScanConfig{
			UserID:                "default",
			Keywords:              []string{},
			MinProfit:             0,
			MinROI:                0,
			MatchThreshold:        arbitrage.DefaultMatchThreshold,
			MaxConcurrentKeywords: 5,
			Interval:              duration{15 * time.Minute},
			ArchiveResults:        false,
		},
		Notify: NotifyConfig{
			Events: []string{"scan_complete", "opportunity_found", "error"},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode: "scan" runs one
// detection pass, "watch" repeats on an interval, "list" prints the user's
// active opportunities and exits.
var validModes = map[string]bool{
	"scan":  true,
	"watch": true,
	"list":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, watch, list)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Ebay
	if c.Ebay.BaseURL == "" {
		errs = append(errs, "ebay: base_url must not be empty")
	}
	if c.Ebay.AppID == "" {
		errs = append(errs, "ebay: app_id must not be empty")
	}
	if c.Ebay.CertID == "" {
		errs = append(errs, "ebay: cert_id must not be empty")
	}
	if c.Ebay.MarketplaceID == "" {
		errs = append(errs, "ebay: marketplace_id must not be empty")
	}
	if c.Ebay.RateLimit < 1 {
		errs = append(errs, "ebay: rate_limit must be >= 1")
	}

	// Amazon
	if c.Amazon.BaseURL == "" {
		errs = append(errs, "amazon: base_url must not be empty")
	}
	if c.Amazon.AccessKey == "" {
		errs = append(errs, "amazon: access_key must not be empty")
	}
	if c.Amazon.SecretKey == "" {
		errs = append(errs, "amazon: secret_key must not be empty")
	}
	if c.Amazon.AssociateTag == "" {
		errs = append(errs, "amazon: associate_tag must not be empty")
	}
	if c.Amazon.ItemCount < 1 || c.Amazon.ItemCount > 10 {
		errs = append(errs, fmt.Sprintf("amazon: item_count must be 1-10, got %d", c.Amazon.ItemCount))
	}
	if c.Amazon.RateLimit < 1 {
		errs = append(errs, "amazon: rate_limit must be >= 1")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Scan
	if c.Scan.UserID == "" {
		errs = append(errs, "scan: user_id must not be empty")
	}
	// List mode only reads the store; no keywords needed.
	if mode != "list" && len(c.Scan.Keywords) == 0 {
		errs = append(errs, "scan: keywords must not be empty")
	}
	if c.Scan.MinProfit < 0 {
		errs = append(errs, "scan: min_profit must be >= 0")
	}
	if c.Scan.MinROI < 0 {
		errs = append(errs, "scan: min_roi must be >= 0")
	}
	if c.Scan.MatchThreshold <= 0 || c.Scan.MatchThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("scan: match_threshold must be in (0, 1), got %g", c.Scan.MatchThreshold))
	}
	if c.Scan.MaxConcurrentKeywords < 1 {
		errs = append(errs, "scan: max_concurrent_keywords must be >= 1")
	}
	if mode == "watch" && c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be > 0 in watch mode")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
