// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"github.com/repuestos-py/marketplace/internal/blob"
	"github.com/repuestos-py/marketplace/internal/config"
	"github.com/repuestos-py/marketplace/internal/metrics"
	"github.com/repuestos-py/marketplace/internal/utils"
)

var (
	ErrUnsupportedImage = fmt.Errorf("%w: unsupported image type", ErrValidation)
	ErrImageTooLarge    = fmt.Errorf("%w: image too large", ErrValidation)
	ErrImageDimensions  = fmt.Errorf("%w: wrong image dimensions", ErrValidation)
)

var imageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type StorageService struct {
	blobs  blob.Store
	policy config.PolicyConfig
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Checksum string `json:"checksum"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	// Exact pixel size; zero skips the check.
	Width  int
	Height int
}

// Dimensions renders the required size as "300x600", or "" when any size goes.
func (o UploadOptions) Dimensions() string {
	if o.Width == 0 || o.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", o.Width, o.Height)
}

// ImageUpload is a file read from a multipart form, not yet validated.
type ImageUpload struct {
	Filename string
	Data     []byte
}

func NewStorageService(blobs blob.Store, policy config.PolicyConfig) *StorageService {
	return &StorageService{
		blobs:  blobs,
		policy: policy,
	}
}

func (s *StorageService) GetDefaultUploadOptions(category string) UploadOptions {
	switch category {
	case "ads/large":
		return UploadOptions{
			Folder:       "ads/large",
			MaxSize:      s.policy.AdImageMaxBytes,
			AllowedTypes: imageTypes,
			Width:        300,
			Height:       600,
		}
	case "ads/small":
		return UploadOptions{
			Folder:       "ads/small",
			MaxSize:      s.policy.AdImageMaxBytes,
			AllowedTypes: imageTypes,
			Width:        150,
			Height:       300,
		}
	default:
		return UploadOptions{
			Folder:       "products",
			MaxSize:      s.policy.ProductImageMaxBytes,
			AllowedTypes: imageTypes,
		}
	}
}

// ReadUpload reads a form file, stopping one byte past limit so oversized
// files are caught without buffering them whole.
func ReadUpload(header *multipart.FileHeader, limit int64) (*ImageUpload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if limit > 0 {
		reader = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &ImageUpload{Filename: header.Filename, Data: data}, nil
}

// ValidateImage checks content type, size and dimensions and returns the
// sniffed MIME type. Nothing is sent to the blob store.
func (s *StorageService) ValidateImage(upload *ImageUpload, options UploadOptions) (string, error) {
	if options.MaxSize > 0 && int64(len(upload.Data)) > options.MaxSize {
		metrics.UploadRejections.WithLabelValues("size").Inc()
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrImageTooLarge, upload.Filename, options.MaxSize)
	}

	mtype := mimetype.Detect(upload.Data)
	allowed := len(options.AllowedTypes) == 0
	for _, t := range options.AllowedTypes {
		if mtype.Is(t) {
			allowed = true
			break
		}
	}
	if !allowed {
		metrics.UploadRejections.WithLabelValues("type").Inc()
		return "", fmt.Errorf("%w: %s is %s", ErrUnsupportedImage, upload.Filename, mtype.String())
	}

	if options.Width > 0 || options.Height > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(upload.Data))
		if err != nil {
			metrics.UploadRejections.WithLabelValues("type").Inc()
			return "", fmt.Errorf("%w: %s cannot be decoded: %v", ErrUnsupportedImage, upload.Filename, err)
		}
		if cfg.Width != options.Width || cfg.Height != options.Height {
			metrics.UploadRejections.WithLabelValues("dimensions").Inc()
			return "", fmt.Errorf("%w: %s is %dx%d, want %dx%d",
				ErrImageDimensions, upload.Filename, cfg.Width, cfg.Height, options.Width, options.Height)
		}
	}

	return mtype.String(), nil
}

// UploadImage validates and stores one image.
func (s *StorageService) UploadImage(ctx context.Context, upload *ImageUpload, options UploadOptions) (*UploadResult, error) {
	contentType, err := s.ValidateImage(upload, options)
	if err != nil {
		return nil, err
	}
	return s.put(ctx, upload, options, contentType)
}

// UploadImages validates every image before storing any of them.
func (s *StorageService) UploadImages(ctx context.Context, uploads []*ImageUpload, options UploadOptions) ([]*UploadResult, error) {
	contentTypes := make([]string, len(uploads))
	for i, upload := range uploads {
		contentType, err := s.ValidateImage(upload, options)
		if err != nil {
			return nil, err
		}
		contentTypes[i] = contentType
	}

	results := make([]*UploadResult, 0, len(uploads))
	for i, upload := range uploads {
		result, err := s.put(ctx, upload, options, contentTypes[i])
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *StorageService) put(ctx context.Context, upload *ImageUpload, options UploadOptions, contentType string) (*UploadResult, error) {
	key := s.generateFileName(upload.Filename, options.Folder)

	url, err := s.blobs.Put(ctx, key, upload.Data, contentType)
	if err != nil {
		return nil, classify("upload image", err)
	}

	return &UploadResult{
		URL:      url,
		Key:      key,
		Size:     int64(len(upload.Data)),
		MimeType: contentType,
		Checksum: utils.HashBytes(upload.Data),
	}, nil
}

// DeleteFile removes a stored object. Failures are logged only; a dangling
// blob is harmless.
func (s *StorageService) DeleteFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("Failed to delete stored file")
	}
}

var unsafeName = regexp.MustCompile(`[^a-z0-9._-]+`)

func (s *StorageService) generateFileName(originalName, folder string) string {
	id := uuid.New()

	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	base = strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(base), "-"), "-.")
	if len(base) > 40 {
		base = base[:40]
	}

	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, id.String()[:8], ext)
	if base != "" {
		filename = fmt.Sprintf("%s_%s-%s%s", timestamp, id.String()[:8], base, ext)
	}

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}

	return filename
}

// KeyFromURL recovers an object key from a URL this service produced.
func KeyFromURL(url string) string {
	for _, folder := range []string{"products/", "ads/large/", "ads/small/"} {
		if i := strings.LastIndex(url, "/"+folder); i >= 0 {
			return url[i+1:]
		}
	}
	return ""
}
