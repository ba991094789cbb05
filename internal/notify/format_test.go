package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/resellarb/arbscan/internal/domain"
)

func TestFormatScanSummary(t *testing.T) {
	result := domain.ScanResult{
		Created: []domain.Opportunity{
			{ProductName: "Lego Millennium Falcon", SourcePrice: 80, DestinationPrice: 180, NetProfit: 51.5, ROI: 60.6},
		},
		KeywordCounts: map[string]int{"lego": 1, "sony headphones": 0},
		KeywordErrors: map[string]error{"nintendo": errors.New("catalog unavailable")},
		Duration:      2300 * time.Millisecond,
	}

	out := FormatScanSummary(result)
	assert.Contains(t, out, "Scan finished in 2.3s: 1 new opportunities")
	assert.Contains(t, out, "lego: 1")
	assert.Contains(t, out, "sony headphones: 0")
	assert.Contains(t, out, "Failed keywords: nintendo")
	assert.Contains(t, out, "Lego Millennium Falcon: buy 80.00, sell 180.00, profit 51.50 (ROI 60.6%)")
}

func TestFormatScanSummaryTruncates(t *testing.T) {
	result := domain.ScanResult{}
	for range 15 {
		result.Created = append(result.Created, domain.Opportunity{ProductName: "x"})
	}

	out := FormatScanSummary(result)
	assert.Contains(t, out, "... and 5 more")
}

func TestFormatScanSummaryEmpty(t *testing.T) {
	out := FormatScanSummary(domain.ScanResult{})
	assert.Contains(t, out, "0 new opportunities")
	assert.NotContains(t, out, "Failed keywords")
}

func TestFormatOpportunities(t *testing.T) {
	opps := []domain.Opportunity{
		{
			ID:               "op-1",
			ProductName:      "Sony WH-1000XM4",
			SourcePrice:      80,
			DestinationPrice: 180,
			NetProfit:        51.5,
			ROI:              60.6,
			DiscoveredAt:     time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		},
		{ID: "op-2", ProductName: "Lego Millennium Falcon"},
	}

	out := FormatOpportunities(opps)
	assert.Contains(t, out, "2 active opportunities")
	assert.Contains(t, out, "[op-1] Sony WH-1000XM4: buy 80.00, sell 180.00, profit 51.50 (ROI 60.6%) discovered 2026-08-20")
	assert.Contains(t, out, "[op-2]")
}

func TestFormatOpportunitiesEmpty(t *testing.T) {
	assert.Equal(t, "No active opportunities.", FormatOpportunities(nil))
}
