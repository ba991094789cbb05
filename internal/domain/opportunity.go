package domain

import "time"

// OpportunityStatus represents the lifecycle state of a persisted
// opportunity. The detection engine only ever creates active opportunities;
// later transitions come from outside.
type OpportunityStatus string

const (
	OpportunityStatusActive  OpportunityStatus = "active"
	OpportunityStatusExpired OpportunityStatus = "expired"
	OpportunityStatusSold    OpportunityStatus = "sold"
)

// ValidOpportunityStatus reports whether s is one of the known statuses.
func ValidOpportunityStatus(s OpportunityStatus) bool {
	switch s {
	case OpportunityStatusActive, OpportunityStatusExpired, OpportunityStatusSold:
		return true
	default:
		return false
	}
}

// MatchedPair is a hypothesis that a source and a destination catalog item
// refer to the same physical product. Pairs only exist above the match
// threshold and live within a single scan.
type MatchedPair struct {
	Source      CatalogItem
	Destination CatalogItem
	Similarity  float64 // in [0,1]
}

// PricedOpportunity annotates a matched pair with computed economics. Only
// pairs with a positive net profit survive pricing.
type PricedOpportunity struct {
	Pair                MatchedPair
	TotalCost           float64 // source price + source shipping
	SourceFee           float64
	DestinationFee      float64
	FulfillmentShipping float64
	NetProfit           float64
	ROI                 float64 // percentage, net profit / total cost * 100
}

// Opportunity is the persisted record of a detected arbitrage opportunity.
// It is created once on discovery and never mutated by the engine afterwards;
// status transitions happen elsewhere.
type Opportunity struct {
	ID                    string
	UserID                string
	ProductName           string
	SourcePrice           float64
	DestinationPrice      float64
	SourceURL             string
	DestinationURL        string
	ImageURL              string
	SourceSeller          string
	DestinationSeller     string
	SourceFee             float64
	DestinationFee        float64
	ShippingCost          float64 // estimated shipping to fulfillment
	TotalCost             float64
	NetProfit             float64
	ROI                   float64
	Similarity            float64
	SourceExternalID      string
	DestinationExternalID string
	Status                OpportunityStatus
	DiscoveredAt          time.Time
}

// OpportunityDedupKey builds the tuple key that identifies a unique
// opportunity: at most one active record may exist per key.
func OpportunityDedupKey(userID, sourceExternalID, destinationExternalID string) string {
	return userID + ":" + sourceExternalID + ":" + destinationExternalID
}

// DedupKey returns the opportunity's uniqueness key.
func (o Opportunity) DedupKey() string {
	return OpportunityDedupKey(o.UserID, o.SourceExternalID, o.DestinationExternalID)
}

// ScanSettings are the user-supplied parameters for one scan. Validation of
// numeric ranges happens at the configuration boundary, not in the engine.
type ScanSettings struct {
	Keywords  []string
	MinProfit float64
	MinROI    float64 // percentage, e.g. 25 means 25%
}

// ScanResult is what one scan invocation reports back: the newly created
// opportunities plus, per keyword, either a discovery count or an error.
// Partial success is the expected common case.
type ScanResult struct {
	Created       []Opportunity
	KeywordCounts map[string]int
	KeywordErrors map[string]error
	StartedAt     time.Time
	Duration      time.Duration
}
