// internal/services/ad_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/repuestos-py/marketplace/internal/ads"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
	"github.com/repuestos-py/marketplace/internal/utils"
)

type AdService struct {
	// createMu serializes creates in this process; the store guards the cap
	// across processes.
	createMu       sync.Mutex
	store          *store.Store
	storageService *StorageService
	maxAds         int
	timeout        time.Duration
}

type AdRequest struct {
	Title  string `form:"title" json:"title" validate:"required,max=255"`
	URL    string `form:"url" json:"url" validate:"required,url"`
	Order  *int   `form:"order" json:"order,omitempty" validate:"omitempty,min=0"`
	Active *bool  `form:"active" json:"active,omitempty"`
}

// AdImages are the two creatives of an ad. On update either may be nil to
// keep the stored one.
type AdImages struct {
	Large *ImageUpload
	Small *ImageUpload
}

func NewAdService(st *store.Store, storageService *StorageService, maxAds int, timeout time.Duration) *AdService {
	if maxAds < 1 {
		maxAds = ads.DefaultMaxAds
	}
	return &AdService{
		store:          st,
		storageService: storageService,
		maxAds:         maxAds,
		timeout:        timeout,
	}
}

func (s *AdService) MaxAds() int {
	return s.maxAds
}

func (s *AdService) ListAds(ctx context.Context) ([]models.Advertisement, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.store.Advertisements.List(ctx)
	if err != nil {
		return nil, classify("list advertisements", err)
	}
	return list, nil
}

// Rotation returns the sidebar placements for the storefront.
func (s *AdService) Rotation(ctx context.Context) ([]ads.Placement, error) {
	list, err := s.ListAds(ctx)
	if err != nil {
		return nil, err
	}
	return ads.Rotate(list, s.maxAds), nil
}

// CreateAd enforces the ad cap before looking at the images, and validates
// both images before uploading either. The insert re-checks the cap.
func (s *AdService) CreateAd(ctx context.Context, adminID string, req *AdRequest, images AdImages) (*models.Advertisement, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.store.Advertisements.Count(ctx)
	if err != nil {
		return nil, classify("count advertisements", err)
	}
	if count >= int64(s.maxAds) {
		return nil, ErrAdLimitReached
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if images.Large == nil || images.Small == nil {
		return nil, validationError("both large and small images are required")
	}

	large, small, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	ad := &models.Advertisement{
		BaseModel:  models.BaseModel{ID: uuid.NewString()},
		Title:      req.Title,
		URL:        req.URL,
		LargeImage: large.URL,
		SmallImage: small.URL,
		Active:     true,
		Order:      int(count),
	}
	if req.Order != nil {
		ad.Order = *req.Order
	}
	if req.Active != nil {
		ad.Active = *req.Active
	}

	if err := s.store.Advertisements.Create(ctx, ad, s.maxAds); err != nil {
		s.storageService.DeleteFile(ctx, large.Key)
		s.storageService.DeleteFile(ctx, small.Key)
		if errors.Is(err, store.ErrLimitReached) {
			return nil, ErrAdLimitReached
		}
		return nil, classify("create advertisement", err)
	}

	createAuditLog(ctx, s.store.Audit, adminID, ActionCreateAd, "advertisement", ad.ID, nil,
		map[string]interface{}{"title": ad.Title, "order": ad.Order})

	return ad, nil
}

func (s *AdService) UpdateAd(ctx context.Context, adminID, id string, req *AdRequest, images AdImages) (*models.Advertisement, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.store.Advertisements.Get(ctx, id)
	if err != nil {
		return nil, classify("load advertisement", err)
	}

	large, small, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Title = req.Title
	updated.URL = req.URL
	updated.UpdatedAt = time.Now()
	if req.Order != nil {
		updated.Order = *req.Order
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}
	if large != nil {
		updated.LargeImage = large.URL
	}
	if small != nil {
		updated.SmallImage = small.URL
	}

	if err := s.store.Advertisements.Update(ctx, &updated); err != nil {
		return nil, classify("update advertisement", err)
	}

	if large != nil {
		s.storageService.DeleteFile(ctx, KeyFromURL(current.LargeImage))
	}
	if small != nil {
		s.storageService.DeleteFile(ctx, KeyFromURL(current.SmallImage))
	}

	createAuditLog(ctx, s.store.Audit, adminID, ActionUpdateAd, "advertisement", id,
		map[string]interface{}{"title": current.Title, "order": current.Order, "active": current.Active},
		map[string]interface{}{"title": updated.Title, "order": updated.Order, "active": updated.Active})

	return &updated, nil
}

func (s *AdService) DeleteAd(ctx context.Context, adminID, id string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.store.Advertisements.Get(ctx, id)
	if err != nil {
		return classify("load advertisement", err)
	}
	if err := s.store.Advertisements.Delete(ctx, id); err != nil {
		return classify("delete advertisement", err)
	}

	s.storageService.DeleteFile(ctx, KeyFromURL(current.LargeImage))
	s.storageService.DeleteFile(ctx, KeyFromURL(current.SmallImage))

	createAuditLog(ctx, s.store.Audit, adminID, ActionDeleteAd, "advertisement", id,
		map[string]interface{}{"title": current.Title}, nil)
	return nil
}

// uploadImages validates whichever images are present, then uploads them.
func (s *AdService) uploadImages(ctx context.Context, images AdImages) (large, small *UploadResult, err error) {
	largeOpts := s.storageService.GetDefaultUploadOptions("ads/large")
	smallOpts := s.storageService.GetDefaultUploadOptions("ads/small")

	if images.Large != nil {
		if _, err := s.storageService.ValidateImage(images.Large, largeOpts); err != nil {
			return nil, nil, err
		}
	}
	if images.Small != nil {
		if _, err := s.storageService.ValidateImage(images.Small, smallOpts); err != nil {
			return nil, nil, err
		}
	}

	if images.Large != nil {
		if large, err = s.storageService.UploadImage(ctx, images.Large, largeOpts); err != nil {
			return nil, nil, err
		}
	}
	if images.Small != nil {
		if small, err = s.storageService.UploadImage(ctx, images.Small, smallOpts); err != nil {
			if large != nil {
				s.storageService.DeleteFile(ctx, large.Key)
			}
			return nil, nil, err
		}
	}
	return large, small, nil
}
