// Package domain defines the core data model of the arbitrage scanner and the
// contracts (stores, caches, clients) that the infrastructure packages
// implement.
package domain

import "context"

// Marketplace identifies the marketplace a catalog item was listed on. Fee
// schedules and client implementations are keyed by this identity.
type Marketplace string

const (
	MarketplaceEbay   Marketplace = "ebay"
	MarketplaceAmazon Marketplace = "amazon"
)

// CatalogItem is one normalized listing from one marketplace's search
// results. Items are built fresh per search call and never persisted directly;
// only derived opportunities reach the store.
type CatalogItem struct {
	ExternalID   string  // marketplace-assigned ID, unique within that marketplace
	Title        string
	Price        float64 // currency implied by the marketplace
	ShippingCost float64 // 0 when the listing does not state one
	ImageURL     string
	SellerName   string
	ListingURL   string
	Condition    string // informational only
	Marketplace  Marketplace
}

// Valid reports whether the item satisfies the catalog invariants: a
// non-empty external ID and a non-negative price.
func (c CatalogItem) Valid() bool {
	return c.ExternalID != "" && c.Price >= 0
}

// CatalogClient is the normalized search capability a marketplace client
// exposes to the engine. Implementations own their protocol details (auth,
// pagination, rate limiting) and report outages as ErrCatalogUnavailable.
type CatalogClient interface {
	Search(ctx context.Context, keyword string) ([]CatalogItem, error)
	Marketplace() Marketplace
}
