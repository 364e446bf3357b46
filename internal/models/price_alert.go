// internal/models/price_alert.go
package models

import (
	"time"

	"github.com/lib/pq"
)

type PriceAlert struct {
	BaseModel
	UserID          uint           `json:"user_id" gorm:"not null;index"`
	ProductID       uint           `json:"product_id" gorm:"not null;index"`
	Condition       AlertCondition `json:"condition" gorm:"type:varchar(10);not null"`
	ThresholdPrice  float64        `json:"threshold_price" gorm:"type:decimal(10,2);not null"`
	Channels        pq.StringArray `json:"channels" gorm:"type:text[]"`
	CooldownMinutes int            `json:"cooldown_minutes" gorm:"default:60"`
	LastTriggeredAt *time.Time     `json:"last_triggered_at,omitempty"`
	IsActive        bool           `json:"is_active" gorm:"default:true"`

	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}
