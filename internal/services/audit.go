// internal/services/audit.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
)

// Audit actions
const (
	ActionPublishProduct = "PUBLISH_PRODUCT"
	ActionRejectProduct  = "REJECT_PRODUCT"
	ActionUpdateProduct  = "UPDATE_PRODUCT"
	ActionDeleteProduct  = "DELETE_PRODUCT"
	ActionUpdateUserRole = "UPDATE_USER_ROLE"
	ActionDeleteUser     = "DELETE_USER"
	ActionCreateCategory = "CREATE_CATEGORY"
	ActionUpdateCategory = "UPDATE_CATEGORY"
	ActionDeleteCategory = "DELETE_CATEGORY"
	ActionCreateAd       = "CREATE_ADVERTISEMENT"
	ActionUpdateAd       = "UPDATE_ADVERTISEMENT"
	ActionDeleteAd       = "DELETE_ADVERTISEMENT"
)

// createAuditLog records a privileged mutation after it succeeded. A failed
// audit write is logged and never undoes the mutation.
func createAuditLog(ctx context.Context, repo store.AuditRepository, actorID, action, resourceType, resourceID string, oldValues, newValues map[string]interface{}) {
	if repo == nil {
		return
	}

	now := time.Now()
	entry := &models.AuditLog{
		BaseModel:    models.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    models.JSONB(oldValues),
		NewValues:    models.JSONB(newValues),
	}

	if err := repo.Create(ctx, entry); err != nil {
		logrus.WithFields(logrus.Fields{
			"action":      action,
			"resource_id": resourceID,
			"actor_id":    actorID,
		}).WithError(err).Warn("Failed to write audit log")
	}
}

// withTimeout bounds a backend call. A zero timeout leaves ctx as is.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
