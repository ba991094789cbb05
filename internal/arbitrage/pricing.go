package arbitrage

import "github.com/resellarb/arbscan/internal/domain"

// FeeSchedule describes how a marketplace charges sellers: a final-value
// percentage of the sale price plus a flat per-order fee.
type FeeSchedule struct {
	FinalValueRate float64
	FlatFee        float64
}

// Fee computes the marketplace fee for a given sale price.
func (f FeeSchedule) Fee(price float64) float64 {
	return price*f.FinalValueRate + f.FlatFee
}

// DefaultFeeSchedules returns the fee table for the supported marketplaces:
// eBay's ~10% final-value fee and Amazon's ~15% referral fee plus a flat FBA
// fee. New marketplaces slot in here without touching the pricing flow.
func DefaultFeeSchedules() map[domain.Marketplace]FeeSchedule {
	return map[domain.Marketplace]FeeSchedule{
		domain.MarketplaceEbay:   {FinalValueRate: 0.10},
		domain.MarketplaceAmazon: {FinalValueRate: 0.15, FlatFee: 3.50},
	}
}

// DefaultFulfillmentShipping is the flat estimate for shipping a purchased
// item to the destination marketplace's fulfillment center.
const DefaultFulfillmentShipping = 5.00

// Calculator derives acquisition cost, fees, net profit, and ROI for a
// matched pair. It is pure and deterministic; fee formulas vary only by
// marketplace identity.
type Calculator struct {
	fees                map[domain.Marketplace]FeeSchedule
	fulfillmentShipping float64
}

// NewCalculator creates a Calculator with the given fee table and
// fulfillment shipping estimate. A nil table or non-positive estimate falls
// back to the defaults.
func NewCalculator(fees map[domain.Marketplace]FeeSchedule, fulfillmentShipping float64) *Calculator {
	if fees == nil {
		fees = DefaultFeeSchedules()
	}
	if fulfillmentShipping <= 0 {
		fulfillmentShipping = DefaultFulfillmentShipping
	}
	return &Calculator{fees: fees, fulfillmentShipping: fulfillmentShipping}
}

// Price computes the economics of a matched pair. It reports ok=false when
// the pair must be rejected: zero total cost (ROI undefined) or non-positive
// net profit.
func (c *Calculator) Price(pair domain.MatchedPair) (domain.PricedOpportunity, bool) {
	sourceFee := c.fees[pair.Source.Marketplace].Fee(pair.Source.Price)
	destinationFee := c.fees[pair.Destination.Marketplace].Fee(pair.Destination.Price)

	totalCost := pair.Source.Price + pair.Source.ShippingCost
	if totalCost == 0 {
		return domain.PricedOpportunity{}, false
	}

	netProfit := pair.Destination.Price - totalCost - sourceFee - destinationFee - c.fulfillmentShipping
	if netProfit <= 0 {
		return domain.PricedOpportunity{}, false
	}

	return domain.PricedOpportunity{
		Pair:                pair,
		TotalCost:           totalCost,
		SourceFee:           sourceFee,
		DestinationFee:      destinationFee,
		FulfillmentShipping: c.fulfillmentShipping,
		NetProfit:           netProfit,
		ROI:                 netProfit / totalCost * 100,
	}, true
}
