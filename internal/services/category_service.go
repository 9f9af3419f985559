// internal/services/category_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type CategoryService struct {
	store   *store.Store
	timeout time.Duration
}

type CategoryRequest struct {
	Name        string              `json:"name" validate:"required,min=2,max=100"`
	Type        models.CategoryType `json:"type" validate:"required,category_type"`
	Description string              `json:"description" validate:"max=1000"`
}

func NewCategoryService(st *store.Store, timeout time.Duration) *CategoryService {
	return &CategoryService{store: st, timeout: timeout}
}

// ParseCategoryType accepts "" for all types.
func ParseCategoryType(value string) (models.CategoryType, error) {
	t := models.CategoryType(strings.ToLower(strings.TrimSpace(value)))
	if t == "" || t.Valid() {
		return t, nil
	}
	return "", validationError("unknown category type %q", value)
}

func (s *CategoryService) ListCategories(ctx context.Context, categoryType models.CategoryType) ([]models.Category, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	categories, err := s.store.Categories.List(ctx, categoryType)
	if err != nil {
		return nil, classify("list categories", err)
	}
	return categories, nil
}

// CreateCategory derives the slug from the name. Duplicate slugs are ErrConflict.
func (s *CategoryService) CreateCategory(ctx context.Context, adminID string, req *CategoryRequest) (*models.Category, error) {
	category, err := s.build(req)
	if err != nil {
		return nil, err
	}
	category.ID = uuid.NewString()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, classify("create category", err)
	}

	createAuditLog(ctx, s.store.Audit, adminID, ActionCreateCategory, "category", category.ID, nil,
		map[string]interface{}{"name": category.Name, "slug": category.Slug, "type": category.Type})

	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, adminID, id string, req *CategoryRequest) (*models.Category, error) {
	category, err := s.build(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.store.Categories.Get(ctx, id)
	if err != nil {
		return nil, classify("load category", err)
	}
	category.BaseModel = current.BaseModel
	category.UpdatedAt = time.Now()

	if err := s.store.Categories.Update(ctx, category); err != nil {
		return nil, classify("update category", err)
	}

	createAuditLog(ctx, s.store.Audit, adminID, ActionUpdateCategory, "category", id,
		map[string]interface{}{"name": current.Name, "slug": current.Slug, "type": current.Type},
		map[string]interface{}{"name": category.Name, "slug": category.Slug, "type": category.Type})

	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, adminID, id string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Categories.Delete(ctx, id); err != nil {
		return classify("delete category", err)
	}

	createAuditLog(ctx, s.store.Audit, adminID, ActionDeleteCategory, "category", id, nil, nil)
	return nil
}

func (s *CategoryService) build(req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	slug := utils.Slugify(req.Name)
	if slug == "" {
		return nil, validationError("category name %q has no usable characters", req.Name)
	}

	return &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
	}, nil
}
