// internal/blob/blob.go

// Package blob stores uploaded images and returns their public URLs.
package blob

import (
	"context"
	"fmt"

	"github.com/repuestos-py/marketplace/internal/config"
)

// Store puts and removes objects by key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by STORAGE_DRIVER.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return NewS3(cfg.AWS)
	case "local", "":
		return NewLocal(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
