// internal/services/admin_service.go
package services

import (
	"context"
	"time"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

type AdminService struct {
	store   *store.Store
	timeout time.Duration
}

func NewAdminService(st *store.Store, timeout time.Duration) *AdminService {
	return &AdminService{store: st, timeout: timeout}
}

func (s *AdminService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	counts, err := s.store.Products.CountByStatus(ctx)
	if err != nil {
		return nil, classify("count products", err)
	}
	users, err := s.store.Users.Count(ctx)
	if err != nil {
		return nil, classify("count users", err)
	}

	stats := &models.DashboardStats{
		PendingProducts:   counts[models.ProductStatusPending],
		PublishedProducts: counts[models.ProductStatusPublished],
		RejectedProducts:  counts[models.ProductStatusRejected],
		TotalUsers:        users,
	}
	for _, n := range counts {
		stats.TotalProducts += n
	}

	return stats, nil
}

// GetAuditLogs returns the most recent entries first.
func (s *AdminService) GetAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.store.Audit.List(ctx, limit)
	if err != nil {
		return nil, classify("list audit logs", err)
	}
	return entries, nil
}
