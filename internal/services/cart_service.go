// internal/services/cart_service.go
package services

import (
	"context"

	"github.com/repuestos-py/marketplace/internal/cart"
	"github.com/repuestos-py/marketplace/internal/metrics"
)

// CartService resolves a session's cart and feeds it published products.
type CartService struct {
	sessions       *cart.Sessions
	productService *ProductService
}

func NewCartService(sessions *cart.Sessions, productService *ProductService) *CartService {
	return &CartService{
		sessions:       sessions,
		productService: productService,
	}
}

// open hydrates the session's cart. A slot that cannot be read is
// ErrTransient and leaves the saved cart untouched.
func (s *CartService) open(ctx context.Context, sessionID string) (*cart.Store, error) {
	st, err := s.sessions.Open(ctx, sessionID)
	if err != nil {
		return nil, classify("open cart", err)
	}
	metrics.CartSessions.Set(float64(s.sessions.Len()))
	return st, nil
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	st, err := s.open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return st.Snapshot(), nil
}

// AddItem snapshots a published product into the cart. Unpublished or
// unknown products are ErrNotFound.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string) (cart.Snapshot, error) {
	product, err := s.productService.GetPublishedProduct(ctx, productID)
	if err != nil {
		return cart.Snapshot{}, err
	}

	st, err := s.open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	metrics.CartMutations.WithLabelValues("add").Inc()
	return st.AddItem(ctx, *product), nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (cart.Snapshot, error) {
	st, err := s.open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	snap, err := st.UpdateQuantity(ctx, productID, quantity)
	if err == nil {
		metrics.CartMutations.WithLabelValues("update").Inc()
	}
	return snap, err
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (cart.Snapshot, error) {
	st, err := s.open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return st.RemoveItem(ctx, productID), nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	st, err := s.open(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	metrics.CartMutations.WithLabelValues("clear").Inc()
	return st.Clear(ctx), nil
}

func (s *CartService) MaxQuantity() int {
	return s.sessions.MaxQuantity()
}
