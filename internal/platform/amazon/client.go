// Package amazon is the client for the Product Advertising API 5, used as
// the destination-marketplace catalog. Requests are signed with AWS SigV4
// and results normalize to domain.CatalogItem.
package amazon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resellarb/arbscan/internal/domain"
)

const (
	defaultItemCount = 10
	defaultRateLimit = 1 // searches per second; PA-API base quota is 1 TPS
	searchItemsPath  = "/paapi5/searchitems"
	amzTarget        = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"

	// PA-API signs against us-east-1 regardless of marketplace endpoint.
	signingRegion  = "us-east-1"
	signingService = "ProductAdvertisingAPI"
)

var searchResources = []string{
	"ItemInfo.Title",
	"Offers.Listings.Price",
	"Offers.Listings.Availability.Message",
	"Images.Primary.Large",
}

// Config holds the parameters for the Amazon client.
type Config struct {
	// BaseURL is the PA-API endpoint, e.g. "https://webservices.amazon.co.uk".
	BaseURL string
	// Marketplace is the PA-API marketplace value, e.g. "www.amazon.co.uk".
	Marketplace string
	// AccessKey and SecretKey sign requests; AssociateTag is the partner tag.
	AccessKey    string
	SecretKey    string
	AssociateTag string
	// ItemCount caps results per search (default 10, PA-API max).
	ItemCount int
	// RateLimit is the allowed searches per second (default 1).
	RateLimit int
	// Limiter, when set, throttles outbound search calls to RateLimit.
	Limiter domain.RateLimiter
}

// Client implements domain.CatalogClient against PA-API SearchItems. It is
// safe for concurrent use.
type Client struct {
	baseURL      string
	host         string
	marketplace  string
	associateTag string
	itemCount    int
	rateLimit    int
	limiter      domain.RateLimiter
	signer       signer
	httpClient   *http.Client

	// now is swapped in tests for deterministic signatures.
	now func() time.Time
}

// New creates an Amazon catalog client from the given config.
func New(cfg Config) *Client {
	count := cfg.ItemCount
	if count <= 0 {
		count = defaultItemCount
	}
	rate := cfg.RateLimit
	if rate <= 0 {
		rate = defaultRateLimit
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	host := ""
	if u, err := url.Parse(base); err == nil {
		host = u.Host
	}
	return &Client{
		baseURL:      base,
		host:         host,
		marketplace:  cfg.Marketplace,
		associateTag: cfg.AssociateTag,
		itemCount:    count,
		rateLimit:    rate,
		limiter:      cfg.Limiter,
		signer: signer{
			accessKey: cfg.AccessKey,
			secretKey: cfg.SecretKey,
			region:    signingRegion,
			service:   signingService,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// Marketplace identifies this client as the Amazon side.
func (c *Client) Marketplace() domain.Marketplace {
	return domain.MarketplaceAmazon
}

// Search runs a SearchItems request for the keyword and returns normalized
// catalog items. Network, signing, and decode failures all wrap
// domain.ErrCatalogUnavailable.
func (c *Client) Search(ctx context.Context, keyword string) ([]domain.CatalogItem, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "amazon:search", c.rateLimit, time.Second); err != nil {
			return nil, fmt.Errorf("amazon: search %q: %w", keyword, err)
		}
	}

	payload, err := json.Marshal(searchItemsPayload{
		Keywords:    keyword,
		SearchIndex: "All",
		ItemCount:   c.itemCount,
		Resources:   searchResources,
		PartnerTag:  c.associateTag,
		PartnerType: "Associates",
		Marketplace: c.marketplace,
	})
	if err != nil {
		return nil, fmt.Errorf("amazon: search %q: encode payload: %w", keyword, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+searchItemsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("amazon: search %q: create request: %w", keyword, err)
	}
	req.Host = c.host
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Amz-Target", amzTarget)
	req.Header.Set("Content-Encoding", "amz-1.0")
	c.signer.sign(req, payload, c.now())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amazon: search %q: %w", keyword, errors.Join(domain.ErrCatalogUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("amazon: search %q: read body: %w", keyword, errors.Join(domain.ErrCatalogUnavailable, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amazon: search %q: status %d: %w",
			keyword, resp.StatusCode, domain.ErrCatalogUnavailable)
	}

	var sr searchItemsResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("amazon: search %q: decode response: %w", keyword, errors.Join(domain.ErrCatalogUnavailable, err))
	}

	items := make([]domain.CatalogItem, 0, len(sr.SearchResult.Items))
	for _, i := range sr.SearchResult.Items {
		item := i.ToCatalogItem()
		// A zero price means no purchasable listing; nothing to resell against.
		if !item.Valid() || item.Price == 0 {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Compile-time interface check.
var _ domain.CatalogClient = (*Client)(nil)
