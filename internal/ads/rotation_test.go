package ads

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repuestos-py/marketplace/internal/models"
)

func ad(id string, order int, active bool) models.Advertisement {
	return models.Advertisement{
		BaseModel:  models.BaseModel{ID: id},
		Title:      "Ad " + id,
		URL:        "https://example.com/" + id,
		LargeImage: id + "-large.jpg",
		SmallImage: id + "-small.jpg",
		Active:     active,
		Order:      order,
	}
}

func TestRotateAlternatesVariants(t *testing.T) {
	placements := Rotate([]models.Advertisement{
		ad("c", 2, true),
		ad("a", 0, true),
		ad("b", 1, true),
	}, DefaultMaxAds)

	assert.Len(t, placements, 3)
	assert.Equal(t, "a", placements[0].ID)
	assert.Equal(t, VariantLarge, placements[0].Variant)
	assert.Equal(t, "a-large.jpg", placements[0].ImageURL)
	assert.Equal(t, "b", placements[1].ID)
	assert.Equal(t, VariantSmall, placements[1].Variant)
	assert.Equal(t, "b-small.jpg", placements[1].ImageURL)
	assert.Equal(t, "c-large.jpg", placements[2].ImageURL)
	assert.Equal(t, 2, placements[2].Position)
}

func TestRotateSkipsInactiveAndCaps(t *testing.T) {
	input := []models.Advertisement{
		ad("off", 0, false),
		ad("1", 1, true),
		ad("2", 1, true),
		ad("3", 1, true),
		ad("4", 3, true),
		ad("5", 4, true),
		ad("6", 5, true),
	}

	placements := Rotate(input, 5)
	got := make([]string, 0, len(placements))
	for _, p := range placements {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, got)

	assert.Len(t, Rotate(input, 0), DefaultMaxAds)
	assert.Len(t, Rotate(input, 2), 2)
}

func TestRotateEmpty(t *testing.T) {
	assert.Empty(t, Rotate(nil, DefaultMaxAds))
	assert.Empty(t, Rotate([]models.Advertisement{ad("x", 0, false)}, DefaultMaxAds))
}
