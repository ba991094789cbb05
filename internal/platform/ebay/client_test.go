package ebay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellarb/arbscan/internal/domain"
)

const tokenJSON = `{"access_token":"tok-123","expires_in":7200,"token_type":"Application Access Token"}`

const searchJSON = `{
	"total": 2,
	"itemSummaries": [
		{
			"itemId": "v1|1234567890|0",
			"title": "Sony WH-1000XM4 Headphones Black",
			"price": {"value": "80.00", "currency": "GBP"},
			"image": {"imageUrl": "https://i.ebayimg.com/1.jpg"},
			"seller": {"username": "hifi_seller"},
			"itemWebUrl": "https://www.ebay.co.uk/itm/1234567890",
			"condition": "Used",
			"shippingOptions": [{"shippingCost": {"value": "5.00", "currency": "GBP"}}]
		},
		{
			"itemId": "v1|555|0",
			"title": "Mystery listing without extras",
			"price": {"value": "12.50", "currency": "GBP"}
		}
	]
}`

func newTestServer(t *testing.T, searchStatus int, searchBody string) (*httptest.Server, *Client) {
	t.Helper()

	var tokenCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/identity/v1/oauth2/token":
			tokenCalls++
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NotEmpty(t, r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(tokenJSON))
		case "/buy/browse/v1/item_summary/search":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			assert.Equal(t, "EBAY_GB", r.Header.Get("X-EBAY-C-MARKETPLACE-ID"))
			assert.Equal(t, "lego", r.URL.Query().Get("q"))
			assert.Equal(t, "buyingOptions:{FIXED_PRICE}", r.URL.Query().Get("filter"))
			w.WriteHeader(searchStatus)
			_, _ = w.Write([]byte(searchBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client := New(Config{
		BaseURL:       srv.URL,
		AppID:         "app",
		CertID:        "cert",
		MarketplaceID: "EBAY_GB",
	})
	return srv, client
}

func TestSearchMapsItems(t *testing.T) {
	_, client := newTestServer(t, http.StatusOK, searchJSON)

	items, err := client.Search(context.Background(), "lego")
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "v1|1234567890|0", first.ExternalID)
	assert.Equal(t, "Sony WH-1000XM4 Headphones Black", first.Title)
	assert.InDelta(t, 80.00, first.Price, 1e-9)
	assert.InDelta(t, 5.00, first.ShippingCost, 1e-9)
	assert.Equal(t, "hifi_seller", first.SellerName)
	assert.Equal(t, "Used", first.Condition)
	assert.Equal(t, domain.MarketplaceEbay, first.Marketplace)

	// Optional fields default rather than fail.
	second := items[1]
	assert.Zero(t, second.ShippingCost)
	assert.Empty(t, second.ImageURL)
	assert.Equal(t, "Unknown", second.SellerName)
	assert.Equal(t, "Unknown", second.Condition)
}

func TestSearchEmptyResult(t *testing.T) {
	_, client := newTestServer(t, http.StatusOK, `{"total":0}`)

	items, err := client.Search(context.Background(), "lego")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchServerErrorIsCatalogUnavailable(t *testing.T) {
	_, client := newTestServer(t, http.StatusBadGateway, `{"errors":[{"message":"upstream"}]}`)

	_, err := client.Search(context.Background(), "lego")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestSearchReusesCachedToken(t *testing.T) {
	tokenCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/identity/v1/oauth2/token" {
			tokenCalls++
			_, _ = w.Write([]byte(tokenJSON))
			return
		}
		_, _ = w.Write([]byte(`{"total":0}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, AppID: "app", CertID: "cert", MarketplaceID: "EBAY_GB"})

	for range 3 {
		_, err := client.Search(context.Background(), "lego")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, tokenCalls)
}

type recordingLimiter struct {
	keys    []string
	limits  []int
	windows []time.Duration
	err     error
}

func (l *recordingLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return true, nil
}

func (l *recordingLimiter) Wait(_ context.Context, key string, limit int, window time.Duration) error {
	l.keys = append(l.keys, key)
	l.limits = append(l.limits, limit)
	l.windows = append(l.windows, window)
	return l.err
}

func TestSearchUsesConfiguredRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/identity/v1/oauth2/token" {
			_, _ = w.Write([]byte(tokenJSON))
			return
		}
		_, _ = w.Write([]byte(`{"total":0}`))
	}))
	defer srv.Close()

	limiter := &recordingLimiter{}
	client := New(Config{
		BaseURL:       srv.URL,
		AppID:         "app",
		CertID:        "cert",
		MarketplaceID: "EBAY_GB",
		RateLimit:     3,
		Limiter:       limiter,
	})

	_, err := client.Search(context.Background(), "lego")
	require.NoError(t, err)

	require.Len(t, limiter.limits, 1)
	assert.Equal(t, "ebay:search", limiter.keys[0])
	assert.Equal(t, 3, limiter.limits[0])
	assert.Equal(t, time.Second, limiter.windows[0])
}

func TestSearchLimiterErrorAbortsSearch(t *testing.T) {
	limiter := &recordingLimiter{err: context.DeadlineExceeded}
	client := New(Config{
		BaseURL:       "http://127.0.0.1:0",
		AppID:         "app",
		CertID:        "cert",
		MarketplaceID: "EBAY_GB",
		Limiter:       limiter,
	})

	_, err := client.Search(context.Background(), "lego")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchAuthFailureIsCatalogUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, AppID: "bad", CertID: "bad", MarketplaceID: "EBAY_GB"})

	_, err := client.Search(context.Background(), "lego")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}
