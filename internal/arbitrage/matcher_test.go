package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellarb/arbscan/internal/domain"
)

func TestSimilarity(t *testing.T) {
	m := NewMatcher(DefaultMatchThreshold)

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{
			name: "identical titles",
			a:    "Apple iPhone 14 Pro Max 256GB",
			b:    "Apple iPhone 14 Pro Max 256GB",
			want: 1.0,
		},
		{
			name: "identical after normalization",
			a:    "APPLE iPhone-14 (Pro) Max!! 256GB",
			b:    "apple iphone14 pro max 256gb",
			want: 1.0,
		},
		{
			name: "disjoint token sets",
			a:    "Generic USB Cable",
			b:    "Wireless Bluetooth Speaker",
			want: 0.0,
		},
		{
			name: "partial overlap",
			a:    "Sony WH-1000XM4 Headphones Black",
			b:    "Sony WH-1000XM4 Wireless Headphones",
			want: 3.0 / 5.0,
		},
		{
			name: "both titles empty",
			a:    "",
			b:    "",
			want: 0.0,
		},
		{
			name: "only short tokens survive nothing",
			a:    "a of to 4k",
			b:    "a of to 4k",
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	m := NewMatcher(DefaultMatchThreshold)

	pairs := [][2]string{
		{"Sony WH-1000XM4 Headphones Black", "Sony WH-1000XM4 Wireless Headphones"},
		{"LEGO Star Wars Millennium Falcon", "Star Wars LEGO set"},
		{"Generic USB Cable", "Wireless Bluetooth Speaker"},
	}
	for _, p := range pairs {
		assert.Equal(t, m.Similarity(p[0], p[1]), m.Similarity(p[1], p[0]))
	}
}

func TestMatchThresholdIsStrict(t *testing.T) {
	// Five shared tokens out of a six-token union gives exactly 5/6; with the
	// threshold set to 5/6 the pair must be excluded because the comparison is
	// strict.
	src := []domain.CatalogItem{{ExternalID: "s1", Title: "nintendo switch oled console white bundle"}}
	dst := []domain.CatalogItem{{ExternalID: "d1", Title: "nintendo switch oled console white"}}

	m := NewMatcher(5.0 / 6.0)
	assert.Empty(t, m.Match(src, dst))

	m = NewMatcher(0.80)
	require.Len(t, m.Match(src, dst), 1)
}

func TestMatchManyToMany(t *testing.T) {
	// Duplicate destination listings each form an independent pair.
	src := []domain.CatalogItem{
		{ExternalID: "s1", Title: "Dyson V11 Cordless Vacuum Cleaner"},
	}
	dst := []domain.CatalogItem{
		{ExternalID: "d1", Title: "Dyson V11 Cordless Vacuum Cleaner"},
		{ExternalID: "d2", Title: "Dyson V11 Cordless Vacuum Cleaner"},
		{ExternalID: "d3", Title: "Ceramic Plant Pot Indoor"},
	}

	m := NewMatcher(DefaultMatchThreshold)
	pairs := m.Match(src, dst)
	require.Len(t, pairs, 2)
	for _, p := range pairs {
		assert.Equal(t, "s1", p.Source.ExternalID)
		assert.InDelta(t, 1.0, p.Similarity, 1e-9)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	m := NewMatcher(DefaultMatchThreshold)

	assert.Empty(t, m.Match(nil, nil))
	assert.Empty(t, m.Match([]domain.CatalogItem{{ExternalID: "s1", Title: "anything here"}}, nil))
	assert.Empty(t, m.Match(nil, []domain.CatalogItem{{ExternalID: "d1", Title: "anything here"}}))
}
