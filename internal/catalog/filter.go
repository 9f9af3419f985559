// internal/catalog/filter.go

// Package catalog narrows a set of published products by the storefront
// sidebar filters.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/repuestos-py/marketplace/internal/models"
)

var ErrInvalidPriceRange = errors.New("invalid price range")

// PriceRange is inclusive on both ends. Max 0 means no upper bound.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

func (r PriceRange) Contains(price int64) bool {
	if price < r.Min {
		return false
	}
	return r.Max == 0 || price <= r.Max
}

func (r PriceRange) String() string {
	if r.Max == 0 {
		return fmt.Sprintf("%d-", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Bucket is one of the price options offered by the storefront.
type Bucket struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var Buckets = []Bucket{
	{Label: "Hasta 500.000 Gs.", Value: "0-500000"},
	{Label: "500.000 - 2.000.000 Gs.", Value: "500000-2000000"},
	{Label: "2.000.000 - 5.000.000 Gs.", Value: "2000000-5000000"},
	{Label: "Más de 5.000.000 Gs.", Value: "5000000-"},
}

// ParsePriceRange reads "min-max" or "min-". An empty string means no range.
func ParsePriceRange(value string) (*PriceRange, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	minPart, maxPart, ok := strings.Cut(value, "-")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriceRange, value)
	}

	min, err := strconv.ParseInt(strings.TrimSpace(minPart), 10, 64)
	if err != nil || min < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriceRange, value)
	}

	var max int64
	if maxPart = strings.TrimSpace(maxPart); maxPart != "" {
		max, err = strconv.ParseInt(maxPart, 10, 64)
		if err != nil || max < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPriceRange, value)
		}
		if max != 0 && max < min {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPriceRange, value)
		}
	}

	return &PriceRange{Min: min, Max: max}, nil
}

// Filter holds the sidebar criteria. Zero-value fields match everything.
type Filter struct {
	Category   string
	Brand      string
	Condition  models.Condition
	PriceRange *PriceRange
	Query      string
}

func (f Filter) IsEmpty() bool {
	return f.Category == "" && f.Brand == "" && f.Condition == "" &&
		f.PriceRange == nil && strings.TrimSpace(f.Query) == ""
}

// Matches applies every set criterion.
func (f Filter) Matches(p models.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.Condition != "" && p.Condition != f.Condition {
		return false
	}
	if f.PriceRange != nil && !f.PriceRange.Contains(p.Price) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

// Apply returns the products matching f, in their original order.
func Apply(products []models.Product, f Filter) []models.Product {
	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			result = append(result, p)
		}
	}
	return result
}

// Brands lists the distinct non-empty brands, sorted.
func Brands(products []models.Product) []string {
	seen := make(map[string]struct{})
	brands := make([]string, 0)
	for _, p := range products {
		if p.Brand == "" {
			continue
		}
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	sort.Strings(brands)
	return brands
}
