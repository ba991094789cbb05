package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBSCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Ebay ──
	setStr(&cfg.Ebay.BaseURL, "ARBSCAN_EBAY_BASE_URL")
	setStr(&cfg.Ebay.AppID, "ARBSCAN_EBAY_APP_ID")
	setStr(&cfg.Ebay.CertID, "ARBSCAN_EBAY_CERT_ID")
	setStr(&cfg.Ebay.MarketplaceID, "ARBSCAN_EBAY_MARKETPLACE_ID")
	setInt(&cfg.Ebay.SearchLimit, "ARBSCAN_EBAY_SEARCH_LIMIT")
	setInt(&cfg.Ebay.RateLimit, "ARBSCAN_EBAY_RATE_LIMIT")

	// ── Amazon ──
	setStr(&cfg.Amazon.BaseURL, "ARBSCAN_AMAZON_BASE_URL")
	setStr(&cfg.Amazon.Marketplace, "ARBSCAN_AMAZON_MARKETPLACE")
	setStr(&cfg.Amazon.AccessKey, "ARBSCAN_AMAZON_ACCESS_KEY")
	setStr(&cfg.Amazon.SecretKey, "ARBSCAN_AMAZON_SECRET_KEY")
	setStr(&cfg.Amazon.AssociateTag, "ARBSCAN_AMAZON_ASSOCIATE_TAG")
	setInt(&cfg.Amazon.ItemCount, "ARBSCAN_AMAZON_ITEM_COUNT")
	setInt(&cfg.Amazon.RateLimit, "ARBSCAN_AMAZON_RATE_LIMIT")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ARBSCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ARBSCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBSCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBSCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBSCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBSCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBSCAN_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBSCAN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBSCAN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBSCAN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ARBSCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBSCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBSCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBSCAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBSCAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBSCAN_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "ARBSCAN_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "ARBSCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBSCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBSCAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ARBSCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBSCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBSCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBSCAN_S3_FORCE_PATH_STYLE")

	// ── Scan ──
	setStr(&cfg.Scan.UserID, "ARBSCAN_SCAN_USER_ID")
	setStringSlice(&cfg.Scan.Keywords, "ARBSCAN_SCAN_KEYWORDS")
	setFloat64(&cfg.Scan.MinProfit, "ARBSCAN_SCAN_MIN_PROFIT")
	setFloat64(&cfg.Scan.MinROI, "ARBSCAN_SCAN_MIN_ROI")
	setFloat64(&cfg.Scan.MatchThreshold, "ARBSCAN_SCAN_MATCH_THRESHOLD")
	setInt(&cfg.Scan.MaxConcurrentKeywords, "ARBSCAN_SCAN_MAX_CONCURRENT_KEYWORDS")
	setDuration(&cfg.Scan.Interval, "ARBSCAN_SCAN_INTERVAL")
	setBool(&cfg.Scan.ArchiveResults, "ARBSCAN_SCAN_ARCHIVE_RESULTS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBSCAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBSCAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBSCAN_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ARBSCAN_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBSCAN_MODE")
	setStr(&cfg.LogLevel, "ARBSCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
