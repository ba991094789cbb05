// Package ebay is the REST client for the eBay Browse API, used as the
// source-marketplace catalog. It handles the OAuth2 client-credentials flow
// and normalizes search results to domain.CatalogItem.
package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/resellarb/arbscan/internal/domain"
)

const (
	defaultSearchLimit = 50
	defaultRateLimit   = 5 // searches per second
	oauthScope         = "https://api.ebay.com/oauth/api_scope"

	// tokenExpirySlack is subtracted from the token lifetime so a token is
	// refreshed before it can expire mid-request.
	tokenExpirySlack = 60 * time.Second
)

// Config holds the parameters for the eBay client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.ebay.com".
	BaseURL string
	// AppID and CertID are the application's OAuth client credentials.
	AppID  string
	CertID string
	// MarketplaceID selects the eBay site, e.g. "EBAY_GB".
	MarketplaceID string
	// SearchLimit caps the number of results per search (default 50).
	SearchLimit int
	// RateLimit is the allowed searches per second (default 5).
	RateLimit int
	// Limiter, when set, throttles outbound search calls to RateLimit.
	Limiter domain.RateLimiter
}

// Client implements domain.CatalogClient against the Browse API. It caches
// the OAuth access token until shortly before expiry and is safe for
// concurrent use.
type Client struct {
	baseURL       string
	appID         string
	certID        string
	marketplaceID string
	searchLimit   int
	rateLimit     int
	limiter       domain.RateLimiter
	httpClient    *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates an eBay catalog client from the given config.
func New(cfg Config) *Client {
	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rate := cfg.RateLimit
	if rate <= 0 {
		rate = defaultRateLimit
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		appID:         cfg.AppID,
		certID:        cfg.CertID,
		marketplaceID: cfg.MarketplaceID,
		searchLimit:   limit,
		rateLimit:     rate,
		limiter:       cfg.Limiter,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Marketplace identifies this client as the eBay side.
func (c *Client) Marketplace() domain.Marketplace {
	return domain.MarketplaceEbay
}

// Search runs a fixed-price item summary search for the keyword and returns
// normalized catalog items. Network, auth, and decode failures all wrap
// domain.ErrCatalogUnavailable.
func (c *Client) Search(ctx context.Context, keyword string) ([]domain.CatalogItem, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "ebay:search", c.rateLimit, time.Second); err != nil {
			return nil, fmt.Errorf("ebay: search %q: %w", keyword, err)
		}
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("ebay: search %q: %w", keyword, errors.Join(domain.ErrCatalogUnavailable, err))
	}

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("limit", strconv.Itoa(c.searchLimit))
	params.Set("filter", "buyingOptions:{FIXED_PRICE}")
	params.Set("sort", "price")

	endpoint := c.baseURL + "/buy/browse/v1/item_summary/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ebay: search %q: create request: %w", keyword, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplaceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ebay: search %q: %w", keyword, errors.Join(domain.ErrCatalogUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("ebay: search %q: read body: %w", keyword, errors.Join(domain.ErrCatalogUnavailable, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ebay: search %q: status %d: %w",
			keyword, resp.StatusCode, domain.ErrCatalogUnavailable)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("ebay: search %q: decode response: %w", keyword, errors.Join(domain.ErrCatalogUnavailable, err))
	}

	items := make([]domain.CatalogItem, 0, len(sr.ItemSummaries))
	for _, s := range sr.ItemSummaries {
		item := s.ToCatalogItem()
		if !item.Valid() {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// token returns a cached OAuth access token, fetching a fresh one via the
// client-credentials grant when missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", oauthScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/identity/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.appID + ":" + c.certID))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access_token")
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpirySlack)
	return c.accessToken, nil
}

// Compile-time interface check.
var _ domain.CatalogClient = (*Client)(nil)
