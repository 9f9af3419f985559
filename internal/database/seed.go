// internal/database/seed.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type seedCategory struct {
	Name string
	Type models.CategoryType
}

var defaultCategories = []seedCategory{
	{"Motor", models.CategoryTypeAuto},
	{"Transmisión", models.CategoryTypeAuto},
	{"Suspensión y Dirección", models.CategoryTypeAuto},
	{"Frenos", models.CategoryTypeAuto},
	{"Carrocería", models.CategoryTypeAuto},
	{"Sistema Eléctrico", models.CategoryTypeAuto},
	{"Interior", models.CategoryTypeAuto},
	{"Motor de Moto", models.CategoryTypeMoto},
	{"Carenado", models.CategoryTypeMoto},
	{"Frenos de Moto", models.CategoryTypeMoto},
	{"Escapes", models.CategoryTypeMoto},
	{"Cubiertas y Llantas", models.CategoryTypeMoto},
}

// SeedCategories creates the default auto and moto categories. Slugs that
// already exist are skipped, so it can run on every deploy.
func SeedCategories(ctx context.Context, st *store.Store) (int, error) {
	created := 0
	for _, seed := range defaultCategories {
		category := &models.Category{
			Name: seed.Name,
			Slug: utils.Slugify(seed.Name),
			Type: seed.Type,
		}
		err := st.Categories.Create(ctx, category)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to seed category %s: %w", seed.Name, err)
		}
		created++
	}

	logrus.WithField("created", created).Info("Seeded categories")
	return created, nil
}

// SeedAdmin makes uid an administrator, creating the user record if needed.
func SeedAdmin(ctx context.Context, st *store.Store, uid, email string) error {
	if uid == "" {
		return errors.New("admin uid is required")
	}
	if existing, err := st.Users.Get(ctx, uid); err == nil {
		if email == "" {
			email = existing.Email
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to load admin: %w", err)
	}

	if err := st.Users.Upsert(ctx, &models.User{ID: uid, Email: email, Role: models.RoleAdmin}); err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	if err := st.Users.SetRole(ctx, uid, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to promote admin: %w", err)
	}

	logrus.WithFields(logrus.Fields{"uid": uid, "email": email}).Info("Seeded admin user")
	return nil
}
