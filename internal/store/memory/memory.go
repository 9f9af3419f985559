// Package memory is an in-process document store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

// New returns a Store whose collections live in memory.
func New() *store.Store {
	db := &database{}
	return store.New(
		&productRepo{db: db},
		&categoryRepo{db: db},
		&adRepo{db: db},
		&userRepo{db: db},
		&auditRepo{db: db},
		nil,
	)
}

// database holds every collection behind one lock; records keep insertion order.
type database struct {
	mu         sync.RWMutex
	products   []models.Product
	categories []models.Category
	ads        []models.Advertisement
	users      []models.User
	audit      []models.AuditLog
}

func newBase(id string) models.BaseModel {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return models.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now}
}

func copyProduct(p models.Product) models.Product {
	if p.Images != nil {
		p.Images = append(pq.StringArray(nil), p.Images...)
	}
	if p.RejectionReason != nil {
		r := *p.RejectionReason
		p.RejectionReason = &r
	}
	return p
}

// Products

type productRepo struct{ db *database }

func (r *productRepo) index(id string) int {
	for i := range r.db.products {
		if r.db.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p.BaseModel = newBase(p.ID)
	r.db.products = append(r.db.products, copyProduct(*p))
	return nil
}

func (r *productRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.index(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	p := copyProduct(r.db.products[i])
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	products := make([]models.Product, 0, len(r.db.products))
	for i := len(r.db.products) - 1; i >= 0; i-- {
		p := r.db.products[i]
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.SellerID != "" && p.SellerID != filter.SellerID {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		products = append(products, copyProduct(p))
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *productRepo) Update(ctx context.Context, id string, patch models.ProductPatch) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	patch.Apply(&r.db.products[i])
	r.db.products[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (r *productRepo) SetStatus(ctx context.Context, id string, change models.StatusChange) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	if r.db.products[i].Status != change.From {
		return store.ErrConflict
	}
	change.ApplyTo(&r.db.products[i])
	r.db.products[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	r.db.products = append(r.db.products[:i], r.db.products[i+1:]...)
	return nil
}

func (r *productRepo) CountByStatus(ctx context.Context) (map[models.ProductStatus]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	counts := make(map[models.ProductStatus]int64)
	for _, p := range r.db.products {
		counts[p.Status]++
	}
	return counts, nil
}

// Categories

type categoryRepo struct{ db *database }

func (r *categoryRepo) index(id string) int {
	for i := range r.db.categories {
		if r.db.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.categories {
		if existing.Slug == c.Slug {
			return store.ErrConflict
		}
	}
	c.BaseModel = newBase(c.ID)
	r.db.categories = append(r.db.categories, *c)
	return nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (*models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.index(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	c := r.db.categories[i]
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, categoryType models.CategoryType) ([]models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	categories := make([]models.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		if categoryType != "" && c.Type != categoryType {
			continue
		}
		categories = append(categories, c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(c.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	for j, existing := range r.db.categories {
		if j != i && existing.Slug == c.Slug {
			return store.ErrConflict
		}
	}
	c.CreatedAt = r.db.categories[i].CreatedAt
	c.UpdatedAt = time.Now().UTC()
	r.db.categories[i] = *c
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	r.db.categories = append(r.db.categories[:i], r.db.categories[i+1:]...)
	return nil
}

// Advertisements

type adRepo struct{ db *database }

func (r *adRepo) index(id string) int {
	for i := range r.db.ads {
		if r.db.ads[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *adRepo) Create(ctx context.Context, ad *models.Advertisement, limit int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if len(r.db.ads) >= limit {
		return store.ErrLimitReached
	}
	ad.BaseModel = newBase(ad.ID)
	r.db.ads = append(r.db.ads, *ad)
	return nil
}

func (r *adRepo) Get(ctx context.Context, id string) (*models.Advertisement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.index(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	ad := r.db.ads[i]
	return &ad, nil
}

func (r *adRepo) List(ctx context.Context) ([]models.Advertisement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ads := append([]models.Advertisement(nil), r.db.ads...)
	sort.SliceStable(ads, func(i, j int) bool {
		return ads[i].Order < ads[j].Order
	})
	return ads, nil
}

func (r *adRepo) Update(ctx context.Context, ad *models.Advertisement) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(ad.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	ad.CreatedAt = r.db.ads[i].CreatedAt
	ad.UpdatedAt = time.Now().UTC()
	r.db.ads[i] = *ad
	return nil
}

func (r *adRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	r.db.ads = append(r.db.ads[:i], r.db.ads[i+1:]...)
	return nil
}

func (r *adRepo) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.ads)), nil
}

// Users

type userRepo struct{ db *database }

func (r *userRepo) index(id string) int {
	for i := range r.db.users {
		if r.db.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *userRepo) Upsert(ctx context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if i := r.index(u.ID); i >= 0 {
		r.db.users[i].Email = u.Email
		r.db.users[i].DisplayName = u.DisplayName
		*u = r.db.users[i]
		return nil
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = time.Now().UTC()
	r.db.users = append(r.db.users, *u)
	return nil
}

func (r *userRepo) Get(ctx context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.index(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	u := r.db.users[i]
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := append([]models.User(nil), r.db.users...)
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *userRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	r.db.users[i].Role = role
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	r.db.users = append(r.db.users[:i], r.db.users[i+1:]...)
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.users)), nil
}

// Audit

type auditRepo struct{ db *database }

func (r *auditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	entry.BaseModel = newBase(entry.ID)
	r.db.audit = append(r.db.audit, *entry)
	return nil
}

func (r *auditRepo) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	entries := make([]models.AuditLog, 0, len(r.db.audit))
	for i := len(r.db.audit) - 1; i >= 0; i-- {
		if limit > 0 && len(entries) == limit {
			break
		}
		entries = append(entries, r.db.audit[i])
	}
	return entries, nil
}
