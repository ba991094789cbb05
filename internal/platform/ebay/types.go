package ebay

import (
	"strconv"

	"github.com/resellarb/arbscan/internal/domain"
)

// tokenResponse is the OAuth2 client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// searchResponse is the Browse API item_summary/search response envelope.
type searchResponse struct {
	ItemSummaries []apiItemSummary `json:"itemSummaries"`
	Total         int              `json:"total"`
}

// apiItemSummary mirrors the subset of the Browse API item summary the
// scanner consumes. Monetary values arrive as decimal strings.
type apiItemSummary struct {
	ItemID          string              `json:"itemId"`
	Title           string              `json:"title"`
	Price           apiAmount           `json:"price"`
	Image           *apiImage           `json:"image"`
	Seller          apiSeller           `json:"seller"`
	ItemWebURL      string              `json:"itemWebUrl"`
	Condition       string              `json:"condition"`
	ShippingOptions []apiShippingOption `json:"shippingOptions"`
}

type apiAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Float parses the decimal string, returning 0 for empty or malformed values.
func (a apiAmount) Float() float64 {
	if a.Value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(a.Value, 64)
	if err != nil {
		return 0
	}
	return f
}

type apiImage struct {
	ImageURL string `json:"imageUrl"`
}

type apiSeller struct {
	Username string `json:"username"`
}

type apiShippingOption struct {
	ShippingCost apiAmount `json:"shippingCost"`
}

// ToCatalogItem maps an API item summary to the normalized catalog model.
func (s apiItemSummary) ToCatalogItem() domain.CatalogItem {
	item := domain.CatalogItem{
		ExternalID:  s.ItemID,
		Title:       s.Title,
		Price:       s.Price.Float(),
		SellerName:  s.Seller.Username,
		ListingURL:  s.ItemWebURL,
		Condition:   s.Condition,
		Marketplace: domain.MarketplaceEbay,
	}
	if item.SellerName == "" {
		item.SellerName = "Unknown"
	}
	if item.Condition == "" {
		item.Condition = "Unknown"
	}
	if s.Image != nil {
		item.ImageURL = s.Image.ImageURL
	}
	if len(s.ShippingOptions) > 0 {
		item.ShippingCost = s.ShippingOptions[0].ShippingCost.Float()
	}
	return item
}
