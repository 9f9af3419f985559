// internal/models/product.go
package models

import (
	"github.com/lib/pq"
)

type Product struct {
	BaseModel       `bson:",inline"`
	Name            string         `json:"name" gorm:"size:255;not null" bson:"name"`
	Description     string         `json:"description" gorm:"type:text" bson:"description"`
	Price           int64          `json:"price" gorm:"not null;index" bson:"price"`
	Category        string         `json:"category" gorm:"size:64;index" bson:"category"`
	CategoryType    CategoryType   `json:"category_type" gorm:"type:varchar(10);index" bson:"category_type"`
	Brand           string         `json:"brand" gorm:"size:100;index" bson:"brand"`
	Model           string         `json:"model" gorm:"size:100" bson:"model"`
	Condition       Condition      `json:"condition" gorm:"type:varchar(10);not null" bson:"condition"`
	Images          pq.StringArray `json:"images" gorm:"type:text[]" bson:"images"`
	Status          ProductStatus  `json:"status" gorm:"type:varchar(20);default:'pending';index" bson:"status"`
	SellerID        string         `json:"seller_id" gorm:"size:64;index" bson:"seller_id"`
	RejectionReason *string        `json:"rejection_reason,omitempty" gorm:"type:text" bson:"rejection_reason,omitempty"`
}

// ProductPatch carries the seller-editable fields of a partial update.
// Nil fields are left untouched.
type ProductPatch struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Price       *int64     `json:"price,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Brand       *string    `json:"brand,omitempty"`
	Model       *string    `json:"model,omitempty"`
	Condition   *Condition `json:"condition,omitempty"`
	Images      []string   `json:"images,omitempty"`

	// Set together with Category, never by the client.
	CategoryType *CategoryType `json:"-"`
}

// Apply merges the patch into p.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.CategoryType != nil {
		p.CategoryType = *patch.CategoryType
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Model != nil {
		p.Model = *patch.Model
	}
	if patch.Condition != nil {
		p.Condition = *patch.Condition
	}
	if patch.Images != nil {
		p.Images = pq.StringArray(patch.Images)
	}
}

// Fields returns the patch as a column map for stores that merge server-side.
func (patch ProductPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.CategoryType != nil {
		fields["category_type"] = *patch.CategoryType
	}
	if patch.Brand != nil {
		fields["brand"] = *patch.Brand
	}
	if patch.Model != nil {
		fields["model"] = *patch.Model
	}
	if patch.Condition != nil {
		fields["condition"] = *patch.Condition
	}
	if patch.Images != nil {
		fields["images"] = pq.StringArray(patch.Images)
	}
	return fields
}
