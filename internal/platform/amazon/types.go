package amazon

import "github.com/resellarb/arbscan/internal/domain"

// searchItemsPayload is the PA-API 5 SearchItems request body.
type searchItemsPayload struct {
	Keywords    string   `json:"Keywords"`
	SearchIndex string   `json:"SearchIndex"`
	ItemCount   int      `json:"ItemCount"`
	Resources   []string `json:"Resources"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
}

// searchItemsResponse is the SearchItems response envelope.
type searchItemsResponse struct {
	SearchResult struct {
		Items []apiItem `json:"Items"`
	} `json:"SearchResult"`
}

// apiItem mirrors the subset of the PA-API item the scanner consumes.
type apiItem struct {
	ASIN          string `json:"ASIN"`
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
	} `json:"ItemInfo"`
	Images struct {
		Primary struct {
			Large struct {
				URL string `json:"URL"`
			} `json:"Large"`
		} `json:"Primary"`
	} `json:"Images"`
	Offers struct {
		Listings []apiListing `json:"Listings"`
	} `json:"Offers"`
}

type apiListing struct {
	Price struct {
		// Amount is expressed in minor units (pence/cents).
		Amount   float64 `json:"Amount"`
		Currency string  `json:"Currency"`
	} `json:"Price"`
	Availability struct {
		Message string `json:"Message"`
	} `json:"Availability"`
}

// unavailableMessage is the PA-API availability text for listings that cannot
// currently be bought. Such listings cannot anchor a resale price.
const unavailableMessage = "Currently unavailable."

// purchasable reports whether the listing carries a price and is in stock.
func (l apiListing) purchasable() bool {
	return l.Price.Amount > 0 && l.Availability.Message != unavailableMessage
}

// ToCatalogItem maps a PA-API item to the normalized catalog model. The price
// comes from the first purchasable listing, converted from minor units to a
// decimal amount; items with no purchasable listing keep a zero price and are
// dropped by the client.
func (i apiItem) ToCatalogItem() domain.CatalogItem {
	item := domain.CatalogItem{
		ExternalID:  i.ASIN,
		Title:       i.ItemInfo.Title.DisplayValue,
		ImageURL:    i.Images.Primary.Large.URL,
		SellerName:  "Amazon",
		ListingURL:  i.DetailPageURL,
		Condition:   "New",
		Marketplace: domain.MarketplaceAmazon,
	}
	if item.Title == "" {
		item.Title = "Unknown"
	}
	for _, l := range i.Offers.Listings {
		if l.purchasable() {
			item.Price = l.Price.Amount / 100
			break
		}
	}
	return item
}
