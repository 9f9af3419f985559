package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repuestos-py/marketplace/internal/models"
)

func sample() []models.Product {
	return []models.Product{
		{
			BaseModel:   models.BaseModel{ID: "1"},
			Name:        "Alternador Corolla",
			Description: "Alternador original, probado",
			Brand:       "Toyota",
			Category:    "electrico",
			Condition:   models.ConditionUsed,
			Price:       100,
		},
		{
			BaseModel:   models.BaseModel{ID: "2"},
			Name:        "Motor CBR",
			Description: "Motor completo con caja",
			Brand:       "Honda",
			Category:    "motor",
			Condition:   models.ConditionNew,
			Price:       9000000,
		},
	}
}

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	products := sample()
	cheap, err := ParsePriceRange("0-500000")
	require.NoError(t, err)
	top, err := ParsePriceRange("5000000-")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"1", "2"}},
		{"brand", Filter{Brand: "Toyota"}, []string{"1"}},
		{"price range", Filter{PriceRange: cheap}, []string{"1"}},
		{"open upper bound", Filter{PriceRange: top}, []string{"2"}},
		{"brand and range disagree", Filter{Brand: "Honda", PriceRange: cheap}, []string{}},
		{"condition", Filter{Condition: models.ConditionNew}, []string{"2"}},
		{"category", Filter{Category: "electrico"}, []string{"1"}},
		{"query in name ignores case", Filter{Query: "cbr"}, []string{"2"}},
		{"query in description", Filter{Query: "PROBADO"}, []string{"1"}},
		{"query misses", Filter{Query: "radiador"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(products, tt.filter)))
		})
	}
}

func TestParsePriceRange(t *testing.T) {
	r, err := ParsePriceRange("500000-2000000")
	require.NoError(t, err)
	assert.Equal(t, &PriceRange{Min: 500000, Max: 2000000}, r)
	assert.True(t, r.Contains(500000))
	assert.True(t, r.Contains(2000000))
	assert.False(t, r.Contains(2000001))

	r, err = ParsePriceRange("100-0")
	require.NoError(t, err)
	assert.True(t, r.Contains(1<<40), "max 0 means no upper bound")

	r, err = ParsePriceRange("")
	require.NoError(t, err)
	assert.Nil(t, r)

	for _, bad := range []string{"abc", "10", "-5", "x-10", "10-y", "500-100"} {
		_, err := ParsePriceRange(bad)
		assert.ErrorIs(t, err, ErrInvalidPriceRange, bad)
	}

	for _, b := range Buckets {
		parsed, err := ParsePriceRange(b.Value)
		require.NoError(t, err, b.Value)
		assert.Equal(t, b.Value, parsed.String())
	}
}

func TestBrands(t *testing.T) {
	products := append(sample(), models.Product{Brand: "Toyota"}, models.Product{})
	assert.Equal(t, []string{"Honda", "Toyota"}, Brands(products))
	assert.Empty(t, Brands(nil))
}
