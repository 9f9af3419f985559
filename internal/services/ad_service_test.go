package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

// recordingBlobs is a blob store that remembers every key it was given.
type recordingBlobs struct {
	mu      sync.Mutex
	delay   time.Duration
	puts    []string
	deletes []string
}

func (b *recordingBlobs) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	time.Sleep(b.delay)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts = append(b.puts, key)
	return "https://cdn.example.com/" + key, nil
}

func (b *recordingBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, key)
	return nil
}

func pngOf(width, height int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

type AdServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.Store
	blobs   *recordingBlobs
	storage *StorageService
	service *AdService
}

func (suite *AdServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store, _ = newTestStore()
	suite.blobs = &recordingBlobs{}
	suite.storage = NewStorageService(suite.blobs, testConfig().Policy)
	suite.service = NewAdService(suite.store, suite.storage, 5, testTimeout)
}

func (suite *AdServiceTestSuite) validImages() AdImages {
	return AdImages{
		Large: &ImageUpload{Filename: "Banner Grande.png", Data: pngOf(300, 600)},
		Small: &ImageUpload{Filename: "banner.png", Data: pngOf(150, 300)},
	}
}

func (suite *AdServiceTestSuite) TestCreateAdDefaultsOrderToCount() {
	req := &AdRequest{Title: "Taller Central", URL: "https://taller.example.com"}

	first, err := suite.service.CreateAd(suite.ctx, "admin-1", req, suite.validImages())
	suite.Require().NoError(err)
	suite.Equal(0, first.Order)
	suite.True(first.Active)
	suite.Contains(first.LargeImage, "ads/large/")
	suite.Contains(first.LargeImage, "-banner-grande.png")
	suite.Contains(first.SmallImage, "ads/small/")

	second, err := suite.service.CreateAd(suite.ctx, "admin-1", req, suite.validImages())
	suite.Require().NoError(err)
	suite.Equal(1, second.Order)

	suite.Len(suite.blobs.puts, 4)
}

func (suite *AdServiceTestSuite) TestCapCheckedBeforeUpload() {
	for i := 0; i < 5; i++ {
		suite.Require().NoError(suite.store.Advertisements.Create(suite.ctx, &models.Advertisement{Title: "ad", Active: true, Order: i}, 5))
	}

	_, err := suite.service.CreateAd(suite.ctx, "admin-1",
		&AdRequest{Title: "Sexto", URL: "https://example.com"}, suite.validImages())
	suite.ErrorIs(err, ErrAdLimitReached)
	suite.Empty(suite.blobs.puts)

	n, err := suite.store.Advertisements.Count(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(5), n)
}

func (suite *AdServiceTestSuite) TestConcurrentCreatesRespectCap() {
	suite.blobs.delay = 20 * time.Millisecond
	// A second service over the same store stands in for another process.
	other := NewAdService(suite.store, suite.storage, 5, testTimeout)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < 8; i++ {
		service := suite.service
		if i%2 == 1 {
			service = other
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateAd(suite.ctx, "admin-1",
				&AdRequest{Title: "Doble clic", URL: "https://example.com"}, suite.validImages())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrAdLimitReached):
				rejected++
			default:
				suite.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	suite.Equal(5, created)
	suite.Equal(3, rejected)
	n, err := suite.store.Advertisements.Count(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(5), n)
}

func (suite *AdServiceTestSuite) TestInvalidImageUploadsNothing() {
	images := suite.validImages()
	images.Small = &ImageUpload{Filename: "small.png", Data: pngOf(300, 600)}

	_, err := suite.service.CreateAd(suite.ctx, "admin-1",
		&AdRequest{Title: "Repuestos", URL: "https://example.com"}, images)
	suite.ErrorIs(err, ErrImageDimensions)
	suite.ErrorIs(err, ErrValidation)
	suite.Empty(suite.blobs.puts)

	images.Small = nil
	_, err = suite.service.CreateAd(suite.ctx, "admin-1",
		&AdRequest{Title: "Repuestos", URL: "https://example.com"}, images)
	suite.ErrorIs(err, ErrValidation)
	suite.Empty(suite.blobs.puts)
}

func (suite *AdServiceTestSuite) TestUpdateReplacesOnlyGivenImage() {
	ad, err := suite.service.CreateAd(suite.ctx, "admin-1",
		&AdRequest{Title: "Original", URL: "https://example.com"}, suite.validImages())
	suite.Require().NoError(err)

	inactive := false
	order := 3
	updated, err := suite.service.UpdateAd(suite.ctx, "admin-1", ad.ID,
		&AdRequest{Title: "Nuevo", URL: "https://example.com/nuevo", Order: &order, Active: &inactive},
		AdImages{Large: &ImageUpload{Filename: "otro.png", Data: pngOf(300, 600)}})
	suite.Require().NoError(err)

	suite.Equal("Nuevo", updated.Title)
	suite.Equal(3, updated.Order)
	suite.False(updated.Active)
	suite.NotEqual(ad.LargeImage, updated.LargeImage)
	suite.Equal(ad.SmallImage, updated.SmallImage)
	suite.Equal([]string{KeyFromURL(ad.LargeImage)}, suite.blobs.deletes)

	placements, err := suite.service.Rotation(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(placements)
}

func (suite *AdServiceTestSuite) TestDeleteRemovesImages() {
	ad, err := suite.service.CreateAd(suite.ctx, "admin-1",
		&AdRequest{Title: "Borrar", URL: "https://example.com"}, suite.validImages())
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.DeleteAd(suite.ctx, "admin-1", ad.ID))
	suite.Len(suite.blobs.deletes, 2)
	suite.ErrorIs(suite.service.DeleteAd(suite.ctx, "admin-1", ad.ID), ErrNotFound)
}

func (suite *AdServiceTestSuite) TestValidateImage() {
	opts := suite.storage.GetDefaultUploadOptions("products")

	contentType, err := suite.storage.ValidateImage(&ImageUpload{Filename: "a.png", Data: pngOf(10, 10)}, opts)
	suite.NoError(err)
	suite.Equal("image/png", contentType)

	_, err = suite.storage.ValidateImage(&ImageUpload{Filename: "a.txt", Data: []byte("plain text, not an image")}, opts)
	suite.ErrorIs(err, ErrUnsupportedImage)

	opts.MaxSize = 16
	_, err = suite.storage.ValidateImage(&ImageUpload{Filename: "a.png", Data: pngOf(10, 10)}, opts)
	suite.ErrorIs(err, ErrImageTooLarge)
}

func TestAdServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdServiceTestSuite))
}
