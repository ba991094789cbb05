package arbitrage

import "github.com/resellarb/arbscan/internal/domain"

// MeetsThresholds reports whether a priced opportunity clears the user's
// minimum profit and minimum ROI. Both bounds are inclusive.
func MeetsThresholds(opp domain.PricedOpportunity, settings domain.ScanSettings) bool {
	return opp.NetProfit >= settings.MinProfit && opp.ROI >= settings.MinROI
}
