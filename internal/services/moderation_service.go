// internal/services/moderation_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repuestos-py/marketplace/internal/metrics"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

// ModerationService drives listings through pending, published and
// rejected. It keeps the admin console's last loaded listing and only
// changes it once the store has confirmed a write.
type ModerationService struct {
	store               *store.Store
	notificationService *NotificationService
	timeout             time.Duration

	mu      sync.RWMutex
	listing []models.Product
	filter  models.ProductStatus
}

func NewModerationService(st *store.Store, notificationService *NotificationService, timeout time.Duration) *ModerationService {
	return &ModerationService{
		store:               st,
		notificationService: notificationService,
		timeout:             timeout,
	}
}

// ParseStatusFilter accepts "", "all" or a product status.
func ParseStatusFilter(value string) (models.ProductStatus, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "all" {
		return "", nil
	}
	status := models.ProductStatus(value)
	if !status.Valid() {
		return "", validationError("unknown status %q", value)
	}
	return status, nil
}

// ListProducts loads the admin listing for a status ("" for all) and
// replaces the cached one. On failure the cached listing is kept.
func (s *ModerationService) ListProducts(ctx context.Context, status models.ProductStatus) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	products, err := s.store.Products.List(ctx, store.ProductFilter{Status: status})
	if err != nil {
		return nil, classify("list products", err)
	}

	s.mu.Lock()
	s.listing = append([]models.Product(nil), products...)
	s.filter = status
	s.mu.Unlock()

	return products, nil
}

// Listing returns the cached admin listing.
func (s *ModerationService) Listing() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.listing...)
}

func (s *ModerationService) Publish(ctx context.Context, adminID, productID string) (*models.Product, error) {
	return s.transition(ctx, adminID, productID, models.ProductStatusPublished, "")
}

// Reject requires a reason with visible characters; the reason is stored as given.
func (s *ModerationService) Reject(ctx context.Context, adminID, productID, reason string) (*models.Product, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	return s.transition(ctx, adminID, productID, models.ProductStatusRejected, reason)
}

func (s *ModerationService) transition(ctx context.Context, adminID, productID string, target models.ProductStatus, reason string) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.store.Products.Get(ctx, productID)
	if err != nil {
		return nil, classify("load product", err)
	}

	change, err := models.PlanTransition(product.Status, target, reason)
	if err != nil {
		return nil, err
	}

	if err := s.store.Products.SetStatus(ctx, productID, change); err != nil {
		return nil, classify("update product status", err)
	}

	updated := *product
	change.ApplyTo(&updated)
	updated.UpdatedAt = time.Now()
	s.reflect(updated)

	metrics.ModerationTransitions.WithLabelValues(string(change.To)).Inc()

	action := ActionPublishProduct
	newValues := map[string]interface{}{"status": change.To}
	if change.To == models.ProductStatusRejected {
		action = ActionRejectProduct
		newValues["rejection_reason"] = *change.Reason
	}
	createAuditLog(ctx, s.store.Audit, adminID, action, "product", productID,
		map[string]interface{}{"status": change.From}, newValues)

	logrus.WithFields(logrus.Fields{
		"product_id": productID,
		"admin_id":   adminID,
		"from":       change.From,
		"to":         change.To,
	}).Info("Product moderated")

	go s.notifySeller(updated)

	return &updated, nil
}

// Delete removes a listing. The cached listing drops it only after the
// store confirms.
func (s *ModerationService) Delete(ctx context.Context, adminID, productID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.store.Products.Get(ctx, productID)
	if err != nil {
		return classify("load product", err)
	}

	if err := s.store.Products.Delete(ctx, productID); err != nil {
		return classify("delete product", err)
	}

	s.mu.Lock()
	s.listing = removeProduct(s.listing, productID)
	s.mu.Unlock()

	createAuditLog(ctx, s.store.Audit, adminID, ActionDeleteProduct, "product", productID,
		map[string]interface{}{"name": product.Name, "status": product.Status, "seller_id": product.SellerID}, nil)

	return nil
}

// reflect writes a confirmed update into the cached listing, dropping the
// product when it no longer matches the listing's status filter.
func (s *ModerationService) reflect(updated models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filter != "" && updated.Status != s.filter {
		s.listing = removeProduct(s.listing, updated.ID)
		return
	}
	for i := range s.listing {
		if s.listing[i].ID == updated.ID {
			s.listing[i] = updated
			return
		}
	}
}

func (s *ModerationService) notifySeller(product models.Product) {
	if s.notificationService == nil || product.SellerID == "" {
		return
	}

	ctx, cancel := withTimeout(context.Background(), s.timeout)
	defer cancel()

	log := logrus.WithField("product_id", product.ID)
	seller, err := s.store.Users.Get(ctx, product.SellerID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.WithError(err).Warn("Failed to load seller for notification")
		}
		return
	}

	switch product.Status {
	case models.ProductStatusPublished:
		err = s.notificationService.SendProductPublishedNotification(&product, seller)
	case models.ProductStatusRejected:
		err = s.notificationService.SendProductRejectedNotification(&product, seller)
	}
	if err != nil {
		log.WithError(err).Warn("Failed to notify seller")
	}
}

func removeProduct(products []models.Product, id string) []models.Product {
	out := products[:0:0]
	for _, p := range products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
