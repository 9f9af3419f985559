// internal/ads/rotation.go

// Package ads picks the advertisements shown in the storefront sidebar.
package ads

import (
	"sort"

	"github.com/repuestos-py/marketplace/internal/models"
)

// DefaultMaxAds is how many ads the sidebar holds.
const DefaultMaxAds = 5

type Variant string

const (
	VariantLarge Variant = "large"
	VariantSmall Variant = "small"
)

// Placement is one rendered sidebar slot.
type Placement struct {
	Position int     `json:"position"`
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Variant  Variant `json:"variant"`
	ImageURL string  `json:"image_url"`
}

// Rotate keeps active ads, orders them by Order (ties keep input order),
// caps the list at max and alternates large and small creatives starting
// with large. A max below 1 falls back to DefaultMaxAds.
func Rotate(ads []models.Advertisement, max int) []Placement {
	if max < 1 {
		max = DefaultMaxAds
	}

	active := make([]models.Advertisement, 0, len(ads))
	for _, ad := range ads {
		if ad.Active {
			active = append(active, ad)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Order < active[j].Order
	})
	if len(active) > max {
		active = active[:max]
	}

	placements := make([]Placement, 0, len(active))
	for i, ad := range active {
		p := Placement{
			Position: i,
			ID:       ad.ID,
			Title:    ad.Title,
			URL:      ad.URL,
			Variant:  VariantLarge,
			ImageURL: ad.LargeImage,
		}
		if i%2 == 1 {
			p.Variant = VariantSmall
			p.ImageURL = ad.SmallImage
		}
		placements = append(placements, p)
	}
	return placements
}
