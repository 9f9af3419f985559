// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/repuestos-py/marketplace/internal/catalog"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
	"github.com/repuestos-py/marketplace/internal/utils"
)

var ErrImageRequired = fmt.Errorf("%w: at least one image is required", ErrValidation)

type ProductService struct {
	store                *store.Store
	authorizationService *AuthorizationService
	timeout              time.Duration
}

type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,min=3,max=255"`
	Description string           `json:"description" validate:"max=5000"`
	Price       int64            `json:"price" validate:"min=0"`
	Category    string           `json:"category" validate:"required"`
	Brand       string           `json:"brand" validate:"required,max=100"`
	Model       string           `json:"model" validate:"max=100"`
	Condition   models.Condition `json:"condition" validate:"required,condition"`
	Images      []string         `json:"images"`
}

type UpdateProductRequest struct {
	Name        *string           `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *int64            `json:"price,omitempty" validate:"omitempty,min=0"`
	Category    *string           `json:"category,omitempty"`
	Brand       *string           `json:"brand,omitempty" validate:"omitempty,max=100"`
	Model       *string           `json:"model,omitempty" validate:"omitempty,max=100"`
	Condition   *models.Condition `json:"condition,omitempty" validate:"omitempty,condition"`
	Images      []string          `json:"images,omitempty"`
}

// SearchResult is one storefront page worth of products plus the brands
// available across the whole published catalog.
type SearchResult struct {
	Products []models.Product `json:"products"`
	Brands   []string         `json:"brands"`
}

func NewProductService(st *store.Store, authorizationService *AuthorizationService, timeout time.Duration) *ProductService {
	return &ProductService{
		store:                st,
		authorizationService: authorizationService,
		timeout:              timeout,
	}
}

// CreateProduct submits a listing for review. Status is always pending and
// the category type is copied from the category.
func (s *ProductService) CreateProduct(ctx context.Context, sellerID string, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	images := cleanImages(req.Images)
	if len(images) == 0 {
		return nil, ErrImageRequired
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	category, err := s.store.Categories.Get(ctx, req.Category)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, validationError("unknown category %q", req.Category)
		}
		return nil, classify("load category", err)
	}

	product := &models.Product{
		BaseModel:    models.BaseModel{ID: uuid.NewString()},
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		Category:     category.ID,
		CategoryType: category.Type,
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		Condition:    req.Condition,
		Images:       pq.StringArray(images),
		Status:       models.ProductStatusPending,
		SellerID:     sellerID,
	}

	if err := s.store.Products.Create(ctx, product); err != nil {
		return nil, classify("create product", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"seller_id":  sellerID,
	}).Info("Product submitted for review")

	return product, nil
}

// GetProduct hides unpublished listings from everyone but their seller and admins.
func (s *ProductService) GetProduct(ctx context.Context, id string, viewer *utils.Identity) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.store.Products.Get(ctx, id)
	if err != nil {
		return nil, classify("load product", err)
	}
	if !s.authorizationService.CanViewProduct(viewer, product) {
		return nil, ErrNotFound
	}
	return product, nil
}

// GetPublishedProduct is the lookup used when a shopper adds to the cart.
func (s *ProductService) GetPublishedProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.GetProduct(ctx, id, nil)
}

// SearchProducts filters the published catalog.
func (s *ProductService) SearchProducts(ctx context.Context, filter catalog.Filter) (*SearchResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	published, err := s.store.Products.List(ctx, store.ProductFilter{Status: models.ProductStatusPublished})
	if err != nil {
		return nil, classify("list products", err)
	}

	return &SearchResult{
		Products: catalog.Apply(published, filter),
		Brands:   catalog.Brands(published),
	}, nil
}

// GetSellerProducts lists everything a seller submitted, any status.
func (s *ProductService) GetSellerProducts(ctx context.Context, sellerID string) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	products, err := s.store.Products.List(ctx, store.ProductFilter{SellerID: sellerID})
	if err != nil {
		return nil, classify("list products", err)
	}
	return products, nil
}

// UpdateProduct is the admin edit path. Status is not editable here.
func (s *ProductService) UpdateProduct(ctx context.Context, adminID, id string, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	patch := models.ProductPatch{
		Name:        trimmed(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Brand:       trimmed(req.Brand),
		Model:       trimmed(req.Model),
		Condition:   req.Condition,
	}
	if req.Images != nil {
		patch.Images = cleanImages(req.Images)
		if len(patch.Images) == 0 {
			return nil, ErrImageRequired
		}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.store.Products.Get(ctx, id)
	if err != nil {
		return nil, classify("load product", err)
	}

	if req.Category != nil && *req.Category != current.Category {
		category, err := s.store.Categories.Get(ctx, *req.Category)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, validationError("unknown category %q", *req.Category)
			}
			return nil, classify("load category", err)
		}
		patch.Category = &category.ID
		patch.CategoryType = &category.Type
	}

	if err := s.store.Products.Update(ctx, id, patch); err != nil {
		return nil, classify("update product", err)
	}

	updated := *current
	patch.Apply(&updated)
	updated.UpdatedAt = time.Now()

	createAuditLog(ctx, s.store.Audit, adminID, ActionUpdateProduct, "product", id, nil, patch.Fields())

	return &updated, nil
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
