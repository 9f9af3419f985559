// internal/models/catalog.go
package models

type Category struct {
	BaseModel   `bson:",inline"`
	Name        string       `json:"name" gorm:"size:100;not null" bson:"name"`
	Slug        string       `json:"slug" gorm:"size:120;uniqueIndex" bson:"slug"`
	Type        CategoryType `json:"type" gorm:"type:varchar(10);not null;index" bson:"type"`
	Description string       `json:"description,omitempty" gorm:"type:text" bson:"description,omitempty"`
}

type Advertisement struct {
	BaseModel  `bson:",inline"`
	Title      string `json:"title" gorm:"size:255;not null" bson:"title"`
	URL        string `json:"url" gorm:"type:text" bson:"url"`
	LargeImage string `json:"large_image" gorm:"type:text" bson:"large_image"`
	SmallImage string `json:"small_image" gorm:"type:text" bson:"small_image"`
	Active     bool   `json:"active" gorm:"default:true" bson:"active"`
	Order      int    `json:"order" gorm:"column:display_order;index" bson:"order"`
}
