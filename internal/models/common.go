// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Base model with common fields. IDs are opaque strings so the same records
// round-trip through Postgres, Mongo and the cart slot unchanged.
type BaseModel struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

func (c Condition) Valid() bool {
	return c == ConditionNew || c == ConditionUsed
}

type CategoryType string

const (
	CategoryTypeAuto CategoryType = "auto"
	CategoryTypeMoto CategoryType = "moto"
)

func (t CategoryType) Valid() bool {
	return t == CategoryTypeAuto || t == CategoryTypeMoto
}

type ProductStatus string

const (
	ProductStatusPending   ProductStatus = "pending"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusRejected  ProductStatus = "rejected"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusPending, ProductStatusPublished, ProductStatusRejected:
		return true
	}
	return false
}
