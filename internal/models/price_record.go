// internal/models/price_record.go
package models

import "time"

// PriceRecord is one immutable price observation. Rows are append-only:
// nothing in the codebase updates or deletes them.
type PriceRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProductID   uint      `json:"product_id" gorm:"not null;index:idx_price_records_product_time,priority:1"`
	ProviderID  uint      `json:"provider_id" gorm:"not null;index"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Currency    string    `json:"currency" gorm:"size:3;default:'USD'"`
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
	RecordedAt  time.Time `json:"recorded_at" gorm:"not null;index:idx_price_records_product_time,priority:2"`

	Product  Product  `json:"-" gorm:"foreignKey:ProductID"`
	Provider Provider `json:"-" gorm:"foreignKey:ProviderID"`
}

// PriceChangeEvent is the payload handed to the change notifier.
type PriceChangeEvent struct {
	ProductID     uint      `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Brand         string    `json:"brand,omitempty"`
	Category      string    `json:"category,omitempty"`
	OldPrice      float64   `json:"old_price"`
	NewPrice      float64   `json:"new_price"`
	PriceChange   float64   `json:"price_change"`
	ChangePercent float64   `json:"change_percent"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"`
}
