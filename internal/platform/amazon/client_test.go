package amazon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellarb/arbscan/internal/domain"
)

const searchItemsJSON = `{
	"SearchResult": {
		"Items": [
			{
				"ASIN": "B08C7KG5LP",
				"DetailPageURL": "https://www.amazon.co.uk/dp/B08C7KG5LP",
				"ItemInfo": {"Title": {"DisplayValue": "Sony WH-1000XM4 Wireless Headphones"}},
				"Images": {"Primary": {"Large": {"URL": "https://m.media-amazon.com/1.jpg"}}},
				"Offers": {"Listings": [{"Price": {"Amount": 18000, "Currency": "GBP"}}]}
			},
			{
				"ASIN": "B0NOPRICE",
				"DetailPageURL": "https://www.amazon.co.uk/dp/B0NOPRICE",
				"ItemInfo": {"Title": {"DisplayValue": "Listing without an offer"}}
			}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL:      srv.URL,
		Marketplace:  "www.amazon.co.uk",
		AccessKey:    "AKIDEXAMPLE",
		SecretKey:    "secret",
		AssociateTag: "arbscan-21",
	})
}

func TestSearchMapsItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/paapi5/searchitems", r.URL.Path)
		assert.Equal(t, amzTarget, r.Header.Get("X-Amz-Target"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/"))
		assert.NotEmpty(t, r.Header.Get("X-Amz-Date"))

		var payload searchItemsPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "lego", payload.Keywords)
		assert.Equal(t, "All", payload.SearchIndex)
		assert.Equal(t, 10, payload.ItemCount)
		assert.Equal(t, "arbscan-21", payload.PartnerTag)
		assert.Equal(t, "Associates", payload.PartnerType)
		assert.Equal(t, "www.amazon.co.uk", payload.Marketplace)

		_, _ = w.Write([]byte(searchItemsJSON))
	})

	items, err := client.Search(context.Background(), "lego")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "B08C7KG5LP", item.ExternalID)
	assert.Equal(t, "Sony WH-1000XM4 Wireless Headphones", item.Title)
	assert.InDelta(t, 180.00, item.Price, 1e-9)
	assert.Equal(t, "Amazon", item.SellerName)
	assert.Equal(t, "https://www.amazon.co.uk/dp/B08C7KG5LP", item.ListingURL)
	assert.Equal(t, "https://m.media-amazon.com/1.jpg", item.ImageURL)
	assert.Equal(t, domain.MarketplaceAmazon, item.Marketplace)
}

func TestSearchSkipsUnavailableListings(t *testing.T) {
	const body = `{
		"SearchResult": {
			"Items": [
				{
					"ASIN": "B0BACKORDER",
					"DetailPageURL": "https://www.amazon.co.uk/dp/B0BACKORDER",
					"ItemInfo": {"Title": {"DisplayValue": "Sony WH-1000XM4 Wireless Headphones"}},
					"Offers": {"Listings": [
						{"Price": {"Amount": 15000, "Currency": "GBP"}, "Availability": {"Message": "Currently unavailable."}},
						{"Price": {"Amount": 17500, "Currency": "GBP"}, "Availability": {"Message": "In Stock"}}
					]}
				},
				{
					"ASIN": "B0GONE",
					"DetailPageURL": "https://www.amazon.co.uk/dp/B0GONE",
					"ItemInfo": {"Title": {"DisplayValue": "Discontinued speaker"}},
					"Offers": {"Listings": [
						{"Price": {"Amount": 9000, "Currency": "GBP"}, "Availability": {"Message": "Currently unavailable."}}
					]}
				}
			]
		}
	}`

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	items, err := client.Search(context.Background(), "sony headphones")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B0BACKORDER", items[0].ExternalID)
	assert.InDelta(t, 175.00, items[0].Price, 1e-9)
}

func TestSearchEmptyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"SearchResult":{"Items":[]}}`))
	})

	items, err := client.Search(context.Background(), "lego")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchServerErrorIsCatalogUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"Errors":[{"Code":"TooManyRequests"}]}`))
	})

	_, err := client.Search(context.Background(), "lego")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

type recordingLimiter struct {
	keys    []string
	limits  []int
	windows []time.Duration
}

func (l *recordingLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return true, nil
}

func (l *recordingLimiter) Wait(_ context.Context, key string, limit int, window time.Duration) error {
	l.keys = append(l.keys, key)
	l.limits = append(l.limits, limit)
	l.windows = append(l.windows, window)
	return nil
}

func TestSearchUsesConfiguredRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"SearchResult":{"Items":[]}}`))
	}))
	t.Cleanup(srv.Close)

	limiter := &recordingLimiter{}
	client := New(Config{
		BaseURL:      srv.URL,
		Marketplace:  "www.amazon.co.uk",
		AccessKey:    "AKIDEXAMPLE",
		SecretKey:    "secret",
		AssociateTag: "arbscan-21",
		RateLimit:    2,
		Limiter:      limiter,
	})

	_, err := client.Search(context.Background(), "lego")
	require.NoError(t, err)

	require.Len(t, limiter.limits, 1)
	assert.Equal(t, "amazon:search", limiter.keys[0])
	assert.Equal(t, 2, limiter.limits[0])
	assert.Equal(t, time.Second, limiter.windows[0])
}

func TestSearchMalformedResponseIsCatalogUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"SearchResult":`))
	})

	_, err := client.Search(context.Background(), "lego")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}
