// internal/services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/repuestos-py/marketplace/internal/cart"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

// Errors returned by the services. Handlers map them onto HTTP statuses.
var (
	ErrValidation         = errors.New("validation failed")
	ErrReasonRequired     = models.ErrReasonRequired
	ErrInvalidTransition  = models.ErrInvalidTransition
	ErrQuantityOutOfRange = cart.ErrQuantityOutOfRange
	ErrAdLimitReached     = errors.New("advertisement limit reached")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = store.ErrNotFound
	ErrConflict           = store.ErrConflict
	// ErrTransient covers deadlines and backend outages. Nothing is retried.
	ErrTransient = errors.New("backend unavailable")
)

// validationError wraps ErrValidation with the offending detail.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify passes domain errors through and turns everything else from a
// backend into ErrTransient, keeping the cause for logs.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrConflict):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %s timed out: %v", ErrTransient, op, err)
	default:
		return fmt.Errorf("%w: failed to %s: %v", ErrTransient, op, err)
	}
}
