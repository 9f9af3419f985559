// Package store defines the document store boundary: one repository per
// record collection, implemented over Postgres (gorm), MongoDB and memory.
package store

import (
	"context"
	"errors"

	"github.com/repuestos-py/marketplace/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a guarded update found the record in an unexpected state.
	ErrConflict = errors.New("record was modified concurrently")
	// ErrLimitReached means a capped collection is already full.
	ErrLimitReached = errors.New("collection limit reached")
)

type ProductFilter struct {
	Status   models.ProductStatus
	SellerID string
	Category string
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id string) (*models.Product, error)
	// List returns matching products newest first.
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch) error
	// SetStatus writes status and rejection reason in one update, only if the
	// stored status still equals change.From.
	SetStatus(ctx context.Context, id string, change models.StatusChange) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[models.ProductStatus]int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	Get(ctx context.Context, id string) (*models.Category, error)
	// List returns categories ordered by name. An empty type lists all.
	List(ctx context.Context, categoryType models.CategoryType) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id string) error
}

type AdvertisementRepository interface {
	// Create inserts ad unless limit ads already exist, in which case it
	// returns ErrLimitReached. The count and the insert are atomic.
	Create(ctx context.Context, ad *models.Advertisement, limit int) error
	Get(ctx context.Context, id string) (*models.Advertisement, error)
	// List returns ads by order ascending, ties in creation order.
	List(ctx context.Context) ([]models.Advertisement, error)
	Update(ctx context.Context, ad *models.Advertisement) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	// Upsert creates the user or refreshes email and display name, never the role.
	Upsert(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// Store aggregates the repositories of one backend.
type Store struct {
	Products       ProductRepository
	Categories     CategoryRepository
	Advertisements AdvertisementRepository
	Users          UserRepository
	Audit          AuditRepository

	closer func(context.Context) error
}

func New(products ProductRepository, categories CategoryRepository, ads AdvertisementRepository,
	users UserRepository, audit AuditRepository, closer func(context.Context) error) *Store {
	return &Store{
		Products:       products,
		Categories:     categories,
		Advertisements: ads,
		Users:          users,
		Audit:          audit,
		closer:         closer,
	}
}

// Close releases the backend connection, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}
