// Package arbitrage holds the detection pipeline stages: title matching,
// fee/profit/ROI pricing, threshold filtering, and deduplication against the
// opportunity store.
package arbitrage

import (
	"regexp"
	"strings"

	"github.com/resellarb/arbscan/internal/domain"
)

// DefaultMatchThreshold is the minimum title similarity (strict) for two
// listings to be considered the same product. Carried over from the tuned
// production value; configurable rather than assumed.
const DefaultMatchThreshold = 0.70

// minTokenLen: tokens this short ("a", "of", "4k") carry too little signal
// and are dropped during normalization.
const minTokenLen = 2

var nonWordRE = regexp.MustCompile(`[^\w\s]`)

// Matcher pairs source items against destination items by token-overlap
// title similarity. It is a pure component with no failure modes.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a Matcher with the given similarity threshold. A
// non-positive threshold falls back to DefaultMatchThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{threshold: threshold}
}

// Match compares every (source, destination) pair and returns those whose
// title similarity strictly exceeds the threshold. A single item may appear
// in zero, one, or many pairs; no 1:1 constraint is applied. Result sets are
// small (searches are capped per side) so the O(n*m) comparison is fine.
func (m *Matcher) Match(source, destination []domain.CatalogItem) []domain.MatchedPair {
	var pairs []domain.MatchedPair

	destTokens := make([]map[string]struct{}, len(destination))
	for i, d := range destination {
		destTokens[i] = tokenize(d.Title)
	}

	for _, s := range source {
		srcTokens := tokenize(s.Title)
		for i, d := range destination {
			sim := jaccard(srcTokens, destTokens[i])
			if sim > m.threshold {
				pairs = append(pairs, domain.MatchedPair{
					Source:      s,
					Destination: d,
					Similarity:  sim,
				})
			}
		}
	}
	return pairs
}

// Similarity returns the token-overlap similarity of two titles in [0,1].
// It is symmetric and returns 1.0 for identical normalized token sets.
func (m *Matcher) Similarity(a, b string) float64 {
	return jaccard(tokenize(a), tokenize(b))
}

// tokenize normalizes a title into its comparison token set: lowercase,
// punctuation stripped, split on whitespace, short tokens discarded.
func tokenize(title string) map[string]struct{} {
	cleaned := nonWordRE.ReplaceAllString(strings.ToLower(title), "")
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= minTokenLen {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// jaccard computes |intersection| / |union| of two token sets, 0 when the
// union is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
