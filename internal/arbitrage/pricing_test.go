package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellarb/arbscan/internal/domain"
)

func pair(sourcePrice, sourceShipping, destPrice float64) domain.MatchedPair {
	return domain.MatchedPair{
		Source: domain.CatalogItem{
			ExternalID:   "ebay-1",
			Title:        "Sony WH-1000XM4 Headphones Black",
			Price:        sourcePrice,
			ShippingCost: sourceShipping,
			Marketplace:  domain.MarketplaceEbay,
		},
		Destination: domain.CatalogItem{
			ExternalID:  "B00ASIN1",
			Title:       "Sony WH-1000XM4 Wireless Headphones",
			Price:       destPrice,
			Marketplace: domain.MarketplaceAmazon,
		},
		Similarity: 0.8,
	}
}

func TestPriceProfitablePair(t *testing.T) {
	// Source 80.00 + 5.00 shipping, destination 180.00:
	// sourceFee 8.00, destinationFee 27.00+3.50, fulfillment 5.00,
	// netProfit 180 - 85 - 8 - 30.50 - 5 = 51.50, roi 51.50/85*100.
	calc := NewCalculator(DefaultFeeSchedules(), DefaultFulfillmentShipping)

	opp, ok := calc.Price(pair(80.00, 5.00, 180.00))
	require.True(t, ok)

	assert.InDelta(t, 85.00, opp.TotalCost, 1e-9)
	assert.InDelta(t, 8.00, opp.SourceFee, 1e-9)
	assert.InDelta(t, 30.50, opp.DestinationFee, 1e-9)
	assert.InDelta(t, 5.00, opp.FulfillmentShipping, 1e-9)
	assert.InDelta(t, 51.50, opp.NetProfit, 1e-9)
	assert.InDelta(t, 51.50/85.00*100, opp.ROI, 1e-9)
}

func TestPriceRejectsUnprofitablePair(t *testing.T) {
	// Same items but destination priced at 90.00 leaves a negative net profit.
	calc := NewCalculator(nil, 0)

	_, ok := calc.Price(pair(80.00, 5.00, 90.00))
	assert.False(t, ok)
}

func TestPriceRejectsBreakEven(t *testing.T) {
	// netProfit == 0 must be rejected: the invariant is strictly positive.
	// With a 25% destination fee, 2.00 flat fee, and 2.00 shipping, a 16.00
	// destination price exactly covers the 8.00 acquisition cost:
	// 16 - 8 - 0.25*16 - 2 - 2 = 0.
	fees := map[domain.Marketplace]FeeSchedule{
		domain.MarketplaceAmazon: {FinalValueRate: 0.25, FlatFee: 2.00},
	}
	calc := NewCalculator(fees, 2.00)

	_, ok := calc.Price(pair(8.00, 0, 16.00))
	assert.False(t, ok)
}

func TestPriceRejectsZeroTotalCost(t *testing.T) {
	// Free listing with free shipping: ROI is undefined, the pair is dropped.
	calc := NewCalculator(nil, 0)

	_, ok := calc.Price(pair(0, 0, 100.00))
	assert.False(t, ok)
}

func TestPriceUsesMarketplaceFeeTable(t *testing.T) {
	fees := map[domain.Marketplace]FeeSchedule{
		domain.MarketplaceEbay:   {FinalValueRate: 0.20},
		domain.MarketplaceAmazon: {FinalValueRate: 0.05, FlatFee: 1.00},
	}
	calc := NewCalculator(fees, 2.00)

	opp, ok := calc.Price(pair(100.00, 0, 200.00))
	require.True(t, ok)

	assert.InDelta(t, 20.00, opp.SourceFee, 1e-9)
	assert.InDelta(t, 11.00, opp.DestinationFee, 1e-9)
	assert.InDelta(t, 200.00-100.00-20.00-11.00-2.00, opp.NetProfit, 1e-9)
}

func TestFeeSchedule(t *testing.T) {
	f := FeeSchedule{FinalValueRate: 0.15, FlatFee: 3.50}
	assert.InDelta(t, 30.50, f.Fee(180.00), 1e-9)

	var zero FeeSchedule
	assert.Zero(t, zero.Fee(100.00))
}
