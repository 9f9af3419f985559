package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

func TestProductSetStatusIsGuarded(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &models.Product{Name: "Radiador", Price: 350000, Status: models.ProductStatusPending}
	require.NoError(t, s.Products.Create(ctx, p))
	require.NotEmpty(t, p.ID)

	reason := "Precio irreal"
	reject := models.StatusChange{From: models.ProductStatusPending, To: models.ProductStatusRejected, Reason: &reason}
	require.NoError(t, s.Products.SetStatus(ctx, p.ID, reject))

	stored, err := s.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "Precio irreal", *stored.RejectionReason)

	publish := models.StatusChange{From: models.ProductStatusPending, To: models.ProductStatusPublished}
	assert.ErrorIs(t, s.Products.SetStatus(ctx, p.ID, publish), store.ErrConflict)
	assert.ErrorIs(t, s.Products.SetStatus(ctx, "missing", publish), store.ErrNotFound)
}

func TestProductGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &models.Product{Name: "Espejo", Images: []string{"a.jpg"}}
	require.NoError(t, s.Products.Create(ctx, p))

	got, err := s.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Images[0] = "changed.jpg"
	got.Name = "changed"

	again, err := s.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Espejo", again.Name)
	assert.Equal(t, "a.jpg", again.Images[0])
}

func TestProductListFilterAndCounts(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, status := range []models.ProductStatus{
		models.ProductStatusPending, models.ProductStatusPublished, models.ProductStatusPublished,
	} {
		require.NoError(t, s.Products.Create(ctx, &models.Product{Name: "x", Status: status}))
	}

	published, err := s.Products.List(ctx, store.ProductFilter{Status: models.ProductStatusPublished})
	require.NoError(t, err)
	assert.Len(t, published, 2)

	counts, err := s.Products.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.ProductStatusPending])
	assert.Equal(t, int64(2), counts[models.ProductStatusPublished])
}

func TestAdvertisementsListByOrderKeepsArrivalForTies(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, ad := range []models.Advertisement{
		{Title: "b", Order: 1},
		{Title: "a", Order: 0},
		{Title: "c", Order: 1},
	} {
		ad := ad
		require.NoError(t, s.Advertisements.Create(ctx, &ad, 5))
	}

	ads, err := s.Advertisements.List(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{ads[0].Title, ads[1].Title, ads[2].Title})

	count, err := s.Advertisements.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	err = s.Advertisements.Create(ctx, &models.Advertisement{Title: "d"}, 3)
	assert.ErrorIs(t, err, store.ErrLimitReached)
	count, err = s.Advertisements.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestUserUpsertKeepsRole(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Users.Upsert(ctx, &models.User{ID: "u1", Email: "a@b.py"}))
	require.NoError(t, s.Users.SetRole(ctx, "u1", models.RoleAdmin))
	require.NoError(t, s.Users.Upsert(ctx, &models.User{ID: "u1", Email: "new@b.py", Role: models.RoleUser}))

	u, err := s.Users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "new@b.py", u.Email)
}

func TestCategorySlugConflict(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Categories.Create(ctx, &models.Category{Name: "Frenos", Slug: "frenos"}))
	assert.ErrorIs(t, s.Categories.Create(ctx, &models.Category{Name: "Frenos", Slug: "frenos"}), store.ErrConflict)
}
