// Package postgres implements the document store over gorm and PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

// New wraps an open gorm connection. The connection must be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *store.Store {
	return store.New(
		&productRepo{db: db},
		&categoryRepo{db: db},
		&adRepo{db: db},
		&userRepo{db: db},
		&auditRepo{db: db},
		func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrConflict
	default:
		return err
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// Products

type productRepo struct{ db *gorm.DB }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	ensureID(&p.ID)
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

func (r *productRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (r *productRepo) Update(ctx context.Context, id string, patch models.ProductPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}
	fields["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) SetStatus(ctx context.Context, id string, change models.StatusChange) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND status = ?", id, change.From).
		Updates(map[string]interface{}{
			"status":           change.To,
			"rejection_reason": change.Reason,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update product status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return store.ErrConflict
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) CountByStatus(ctx context.Context) (map[models.ProductStatus]int64, error) {
	var rows []struct {
		Status models.ProductStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	counts := make(map[models.ProductStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Categories

type categoryRepo struct{ db *gorm.DB }

func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	ensureID(&c.ID)
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, categoryType models.CategoryType) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if categoryType != "" {
		query = query.Where("type = ?", categoryType)
	}

	var categories []models.Category
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *models.Category) error {
	result := r.db.WithContext(ctx).Model(c).
		Select("name", "slug", "type", "description", "updated_at").
		Updates(c)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Advertisements

type adRepo struct{ db *gorm.DB }

// adsLockKey is the advisory lock serializing ad inserts across processes.
const adsLockKey = 0x61647331

func (r *adRepo) Create(ctx context.Context, ad *models.Advertisement, limit int) error {
	ensureID(&ad.ID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", adsLockKey).Error; err != nil {
			return fmt.Errorf("failed to lock advertisements: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Advertisement{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count advertisements: %w", err)
		}
		if count >= int64(limit) {
			return store.ErrLimitReached
		}

		if err := tx.Create(ad).Error; err != nil {
			return fmt.Errorf("failed to create advertisement: %w", err)
		}
		return nil
	})
}

func (r *adRepo) Get(ctx context.Context, id string) (*models.Advertisement, error) {
	var ad models.Advertisement
	if err := r.db.WithContext(ctx).First(&ad, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ad, nil
}

func (r *adRepo) List(ctx context.Context) ([]models.Advertisement, error) {
	var ads []models.Advertisement
	err := r.db.WithContext(ctx).Order("display_order ASC, created_at ASC").Find(&ads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch advertisements: %w", err)
	}
	return ads, nil
}

func (r *adRepo) Update(ctx context.Context, ad *models.Advertisement) error {
	result := r.db.WithContext(ctx).Model(ad).
		Select("title", "url", "large_image", "small_image", "active", "display_order", "updated_at").
		Updates(ad)
	if result.Error != nil {
		return fmt.Errorf("failed to update advertisement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *adRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Advertisement{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete advertisement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *adRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Advertisement{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count advertisements: %w", err)
	}
	return count, nil
}

// Users

type userRepo struct{ db *gorm.DB }

func (r *userRepo) Upsert(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name"}),
	}).Create(u).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", translate(err))
	}

	stored, err := r.Get(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

func (r *userRepo) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

func (r *userRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update user role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Audit

type auditRepo struct{ db *gorm.DB }

func (r *auditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	ensureID(&entry.ID)
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return entries, nil
}
