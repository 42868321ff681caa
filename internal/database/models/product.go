package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a sellable item. The ID is a UUID string assigned by
// the service at creation, never by the caller. Image holds the storage
// path of the uploaded file, not the bytes. Deleting a category does not
// cascade to its products.
type Product struct {
	ID                string          `gorm:"primarykey;size:36" json:"id"`
	ProductCategoryID uint            `gorm:"not null;index" json:"product_category_id"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Image             string          `gorm:"size:512;not null" json:"image"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"deleted_at"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}
