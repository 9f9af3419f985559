// internal/models/admin.go
package models

type AuditLog struct {
	BaseModel    `bson:",inline"`
	ActorID      string `json:"actor_id" gorm:"size:64;index" bson:"actor_id"`
	Action       string `json:"action" gorm:"size:100;not null;index" bson:"action"`
	ResourceType string `json:"resource_type" gorm:"size:50;not null;index" bson:"resource_type"`
	ResourceID   string `json:"resource_id" gorm:"size:64;index" bson:"resource_id"`
	OldValues    JSONB  `json:"old_values" gorm:"type:jsonb" bson:"old_values,omitempty"`
	NewValues    JSONB  `json:"new_values" gorm:"type:jsonb" bson:"new_values,omitempty"`
}

// DashboardStats is the admin console summary.
type DashboardStats struct {
	TotalProducts     int64 `json:"total_products"`
	PendingProducts   int64 `json:"pending_products"`
	PublishedProducts int64 `json:"published_products"`
	RejectedProducts  int64 `json:"rejected_products"`
	TotalUsers        int64 `json:"total_users"`
}
