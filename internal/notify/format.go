package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/resellarb/arbscan/internal/domain"
)

// maxSummaryOpportunities caps how many opportunities a summary lists before
// truncating, keeping messages inside Telegram/Discord length limits.
const maxSummaryOpportunities = 10

const timeRounding = 100 * time.Millisecond

// FormatScanSummary renders a scan result as a plain-text notification body.
// Keywords are listed in sorted order so repeated scans produce stable output.
func FormatScanSummary(result domain.ScanResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scan finished in %s: %d new opportunities\n",
		result.Duration.Round(timeRounding), len(result.Created))

	keywords := make([]string, 0, len(result.KeywordCounts))
	for kw := range result.KeywordCounts {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	for _, kw := range keywords {
		fmt.Fprintf(&b, "  %s: %d\n", kw, result.KeywordCounts[kw])
	}

	if len(result.KeywordErrors) > 0 {
		failed := make([]string, 0, len(result.KeywordErrors))
		for kw := range result.KeywordErrors {
			failed = append(failed, kw)
		}
		sort.Strings(failed)
		fmt.Fprintf(&b, "Failed keywords: %s\n", strings.Join(failed, ", "))
	}

	for i, o := range result.Created {
		if i == maxSummaryOpportunities {
			fmt.Fprintf(&b, "  ... and %d more\n", len(result.Created)-maxSummaryOpportunities)
			break
		}
		fmt.Fprintf(&b, "  %s: buy %.2f, sell %.2f, profit %.2f (ROI %.1f%%)\n",
			o.ProductName, o.SourcePrice, o.DestinationPrice, o.NetProfit, o.ROI)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatOpportunities renders a stored opportunity list as plain text, one
// line per opportunity in the order given.
func FormatOpportunities(opps []domain.Opportunity) string {
	if len(opps) == 0 {
		return "No active opportunities."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d active opportunities:\n", len(opps))
	for _, o := range opps {
		fmt.Fprintf(&b, "  [%s] %s: buy %.2f, sell %.2f, profit %.2f (ROI %.1f%%) discovered %s\n",
			o.ID, o.ProductName, o.SourcePrice, o.DestinationPrice,
			o.NetProfit, o.ROI, o.DiscoveredAt.Format("2006-01-02"))
	}
	return strings.TrimRight(b.String(), "\n")
}
