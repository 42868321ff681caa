package models

import (
	"time"

	"gorm.io/gorm"
)

// Category represents a product category. Categories are soft deleted:
// DeletedAt non-null marks the row inactive, restore clears it, and no
// operation ever removes the row physically.
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Products []Product `gorm:"foreignKey:ProductCategoryID" json:"products,omitempty"`
}

// TableName overrides the table name
func (Category) TableName() string {
	return "category_products"
}
