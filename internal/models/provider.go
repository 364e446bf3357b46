// internal/models/provider.go
package models

type Provider struct {
	BaseModel
	Name      string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	BaseURL   string `json:"base_url" gorm:"size:2048;not null"`
	APIKey    string `json:"-" gorm:"size:255"`
	RateLimit int    `json:"rate_limit" gorm:"default:100"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	PriceRecords []PriceRecord `json:"price_records,omitempty" gorm:"foreignKey:ProviderID"`
}
