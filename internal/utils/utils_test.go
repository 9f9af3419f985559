package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Motor y Transmisión":     "motor-y-transmision",
		"  Suspensión / Dirección ": "suspension-direccion",
		"Señalización":            "senalizacion",
		"Frenos--ABS!!":           "frenos-abs",
		"Piezas 4x4":              "piezas-4x4",
		"¡Ñandutí!":               "nanduti",
		"---":                     "",
	}

	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), input)
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "Gs. 1.500.000", FormatCurrency(1500000))
	assert.Equal(t, "Gs. 100.000", FormatCurrency(100000))
	assert.Equal(t, "Gs. 12.345.678", FormatCurrency(12345678))
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT(Identity{UID: "u-1", Email: "admin@repuestos.py", Role: "admin"}, 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	identity := claims.Identity()
	assert.Equal(t, "u-1", identity.UID)
	assert.True(t, identity.IsAdmin())

	SetJWTSecret("other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, PaginationParams{Page: 2, Limit: 2})
	assert.Equal(t, []int{3, 4}, page.Data)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	beyond := Paginate(items, PaginationParams{Page: 9, Limit: 2})
	assert.Empty(t, beyond.Data)
}

func TestValidateStructCustomTags(t *testing.T) {
	req := struct {
		Condition string `validate:"required,condition"`
		Role      string `validate:"required,role"`
	}{Condition: "broken", Role: "admin"}

	errs := GetValidationErrors(ValidateStruct(req))
	require.Len(t, errs, 1)
	assert.Equal(t, "condition", errs[0].Field)
	assert.Equal(t, "condition", errs[0].Tag)
}
