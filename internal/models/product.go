// internal/models/product.go
package models

import (
	"github.com/lib/pq"
)

type Product struct {
	SoftDeleteModel
	Name         string         `json:"name" gorm:"size:200;not null;index"`
	SKU          *string        `json:"sku,omitempty" gorm:"size:100;uniqueIndex"`
	URL          string         `json:"url,omitempty" gorm:"size:2048"`
	Description  string         `json:"description,omitempty" gorm:"type:text"`
	Category     string         `json:"category,omitempty" gorm:"size:100;index"`
	Brand        string         `json:"brand,omitempty" gorm:"size:100;index"`
	ImageURL     string         `json:"image_url,omitempty" gorm:"size:2048"`
	CurrentPrice *float64       `json:"current_price,omitempty" gorm:"type:decimal(10,2)"`
	Status       ProductStatus  `json:"status" gorm:"type:varchar(20);default:'active';index"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	Tags         pq.StringArray `json:"tags,omitempty" gorm:"type:text[]"`

	// Price records are owned by reference and survive a soft delete.
	PriceRecords []PriceRecord `json:"price_records,omitempty" gorm:"foreignKey:ProductID"`
	Alerts       []PriceAlert  `json:"alerts,omitempty" gorm:"foreignKey:ProductID"`
}
