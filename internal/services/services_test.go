package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/repuestos-py/marketplace/internal/config"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
	"github.com/repuestos-py/marketplace/internal/store/memory"
)

// flakyProducts wraps a product repository, counting calls and failing on demand.
type flakyProducts struct {
	store.ProductRepository

	mu        sync.Mutex
	calls     int
	failWith  error
	failWrite bool
	block     bool
}

func (f *flakyProducts) record(write bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil && (!f.failWrite || write) {
		return f.failWith
	}
	return nil
}

func (f *flakyProducts) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *flakyProducts) wait(ctx context.Context) error {
	if !f.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *flakyProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	if err := f.record(false); err != nil {
		return nil, err
	}
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.ProductRepository.Get(ctx, id)
}

func (f *flakyProducts) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	if err := f.record(false); err != nil {
		return nil, err
	}
	return f.ProductRepository.List(ctx, filter)
}

func (f *flakyProducts) SetStatus(ctx context.Context, id string, change models.StatusChange) error {
	if err := f.record(true); err != nil {
		return err
	}
	return f.ProductRepository.SetStatus(ctx, id, change)
}

func (f *flakyProducts) Delete(ctx context.Context, id string) error {
	if err := f.record(true); err != nil {
		return err
	}
	return f.ProductRepository.Delete(ctx, id)
}

var errBackendDown = errors.New("connection refused")

func newTestStore() (*store.Store, *flakyProducts) {
	st := memory.New()
	products := &flakyProducts{ProductRepository: st.Products}
	st.Products = products
	return st, products
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{StoreTimeout: 5},
		JWT:    config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
		Policy: config.PolicyConfig{
			CartMaxQuantity:      10,
			MaxAds:               5,
			ProductImageMaxBytes: 5 * 1024 * 1024,
			AdImageMaxBytes:      2 * 1024 * 1024,
		},
	}
}

func seedProduct(st *store.Store, name string, status models.ProductStatus) *models.Product {
	p := &models.Product{
		Name:      name,
		Price:     150000,
		Brand:     "Toyota",
		Condition: models.ConditionUsed,
		Images:    []string{"https://img.example/" + name + ".jpg"},
		Status:    status,
		SellerID:  "seller-1",
	}
	if err := st.Products.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

const testTimeout = 2 * time.Second
