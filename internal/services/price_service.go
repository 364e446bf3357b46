// internal/services/price_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/pricepulse/pricepulse-backend/internal/database"
	"github.com/pricepulse/pricepulse-backend/internal/models"
	"github.com/pricepulse/pricepulse-backend/internal/utils"
)

// priceChangeEpsilon is the smallest difference treated as a real change;
// smaller deltas are rounding noise from providers.
const priceChangeEpsilon = 0.01

// Notifier dispatches price-change events. Implementations must never let a
// delivery failure reach the caller.
type Notifier interface {
	NotifyPriceChange(event *models.PriceChangeEvent)
}

type PriceService struct {
	db       *gorm.DB
	notifier Notifier
}

type AddPriceRecordRequest struct {
	ProviderID  uint    `json:"provider_id" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Currency    string  `json:"currency,omitempty" validate:"omitempty,currency_code"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}

type HistoryParams struct {
	From       *time.Time
	To         *time.Time
	ProviderID *uint
}

func NewPriceService(db *gorm.DB, notifier Notifier) *PriceService {
	return &PriceService{db: db, notifier: notifier}
}

// AddPriceRecord appends an immutable observation, moves the product's current
// price and dispatches a change notification when the price moved. Notifier
// failures never roll back the write.
func (s *PriceService) AddPriceRecord(productID uint, req *AddPriceRecordRequest) (*models.PriceRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationErrorFrom(err)
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("product", productID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var provider models.Provider
	if err := s.db.First(&provider, req.ProviderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("provider", req.ProviderID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !provider.IsActive {
		return nil, models.NewValidationError("provider is not active")
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	record := &models.PriceRecord{
		ProductID:   productID,
		ProviderID:  req.ProviderID,
		Price:       req.Price,
		Currency:    currency,
		IsAvailable: available,
		RecordedAt:  time.Now().UTC(),
	}

	oldPrice := s.lastKnownPrice(&product)

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create price record: %w", err)
		}

		// Last write wins on concurrent updates; there is no per-product lock.
		if err := tx.Model(&product).Update("current_price", req.Price).Error; err != nil {
			return fmt.Errorf("failed to update current price: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldPrice != nil && PriceChanged(*oldPrice, req.Price) {
		s.notifier.NotifyPriceChange(BuildPriceChangeEvent(&product, *oldPrice, record))
	}

	return record, nil
}

// GetHistory returns a product's observations in ascending timestamp order.
// History stays retrievable after the product is soft-deleted, and a product
// with no records yields an empty slice, not an error.
func (s *PriceService) GetHistory(productID uint, params HistoryParams) ([]models.PriceRecord, error) {
	var count int64
	if err := s.db.Unscoped().Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return nil, models.NewNotFoundError("product", productID)
	}

	query := s.db.Where("product_id = ?", productID)

	if params.From != nil {
		query = query.Where("recorded_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("recorded_at <= ?", *params.To)
	}
	if params.ProviderID != nil {
		query = query.Where("provider_id = ?", *params.ProviderID)
	}

	records := make([]models.PriceRecord, 0)
	if err := query.Order("recorded_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}

	return records, nil
}

// lastKnownPrice prefers the product's current price and falls back to the
// latest record for products created before current_price existed.
func (s *PriceService) lastKnownPrice(product *models.Product) *float64 {
	if product.CurrentPrice != nil {
		return product.CurrentPrice
	}

	var last models.PriceRecord
	err := s.db.Where("product_id = ?", product.ID).
		Order("recorded_at DESC").
		First(&last).Error
	if err != nil {
		return nil
	}

	return &last.Price
}

// PriceChanged reports whether two observations differ beyond rounding noise.
func PriceChanged(oldPrice, newPrice float64) bool {
	return math.Abs(newPrice-oldPrice) > priceChangeEpsilon
}

// BuildPriceChangeEvent packages a change for the notifier.
func BuildPriceChangeEvent(product *models.Product, oldPrice float64, record *models.PriceRecord) *models.PriceChangeEvent {
	change := record.Price - oldPrice

	var changePercent float64
	if oldPrice != 0 {
		changePercent = change / oldPrice * 100
	}

	return &models.PriceChangeEvent{
		ProductID:     product.ID,
		ProductName:   product.Name,
		Brand:         product.Brand,
		Category:      product.Category,
		OldPrice:      oldPrice,
		NewPrice:      record.Price,
		PriceChange:   change,
		ChangePercent: changePercent,
		Currency:      record.Currency,
		Timestamp:     record.RecordedAt,
	}
}
