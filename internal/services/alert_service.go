// internal/services/alert_service.go
package services

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pricepulse/pricepulse-backend/internal/models"
	"github.com/pricepulse/pricepulse-backend/internal/utils"
)

// exactMatchTolerance bounds float comparison for "exact" alert conditions.
const exactMatchTolerance = 0.01

type AlertService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewAlertService(db *gorm.DB, notifier *NotificationService) *AlertService {
	return &AlertService{db: db, notifier: notifier}
}

type CreateAlertRequest struct {
	ProductID       uint                  `json:"product_id" validate:"required"`
	Condition       models.AlertCondition `json:"condition" validate:"required,oneof=below above exact"`
	ThresholdPrice  float64               `json:"threshold_price" validate:"required,gt=0"`
	Channels        []string              `json:"channels" validate:"omitempty,dive,oneof=email sms websocket"`
	CooldownMinutes *int                  `json:"cooldown_minutes" validate:"omitempty,gte=0"`
}

type UpdateAlertRequest struct {
	Condition       *models.AlertCondition `json:"condition,omitempty" validate:"omitempty,oneof=below above exact"`
	ThresholdPrice  *float64               `json:"threshold_price,omitempty" validate:"omitempty,gt=0"`
	Channels        []string               `json:"channels,omitempty" validate:"omitempty,dive,oneof=email sms websocket"`
	CooldownMinutes *int                   `json:"cooldown_minutes,omitempty" validate:"omitempty,gte=0"`
	IsActive        *bool                  `json:"is_active,omitempty"`
}

func (s *AlertService) CreateAlert(userID uint, req *CreateAlertRequest) (*models.PriceAlert, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationErrorFrom(err)
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("product", req.ProductID)
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	alert := models.PriceAlert{
		UserID:         userID,
		ProductID:      req.ProductID,
		Condition:      req.Condition,
		ThresholdPrice: req.ThresholdPrice,
		Channels:       req.Channels,
		IsActive:       true,
	}
	if len(alert.Channels) == 0 {
		alert.Channels = []string{string(models.ChannelWebSocket)}
	}
	if req.CooldownMinutes != nil {
		alert.CooldownMinutes = *req.CooldownMinutes
	} else {
		alert.CooldownMinutes = 60
	}

	if err := s.db.Create(&alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	return &alert, nil
}

func (s *AlertService) GetAlert(userID, alertID uint) (*models.PriceAlert, error) {
	var alert models.PriceAlert
	if err := s.db.Preload("Product").Where("user_id = ?", userID).First(&alert, alertID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("alert", alertID)
		}
		return nil, fmt.Errorf("failed to fetch alert: %w", err)
	}
	return &alert, nil
}

func (s *AlertService) ListAlerts(userID uint, params utils.PaginationParams) ([]models.PriceAlert, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, models.NewValidationError(err.Error())
	}

	query := s.db.Model(&models.PriceAlert{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	alerts := make([]models.PriceAlert, 0)
	query = utils.ApplySort(query, params, []string{"created_at", "threshold_price"})
	query = utils.ApplyPagination(query, params)
	if err := query.Preload("Product").Find(&alerts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, total, nil
}

func (s *AlertService) UpdateAlert(userID, alertID uint, req *UpdateAlertRequest) (*models.PriceAlert, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationErrorFrom(err)
	}

	alert, err := s.GetAlert(userID, alertID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Condition != nil {
		updates["condition"] = *req.Condition
	}
	if req.ThresholdPrice != nil {
		updates["threshold_price"] = *req.ThresholdPrice
	}
	if req.Channels != nil {
		alert.Channels = req.Channels
		updates["channels"] = alert.Channels
	}
	if req.CooldownMinutes != nil {
		updates["cooldown_minutes"] = *req.CooldownMinutes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return alert, nil
	}

	if err := s.db.Model(alert).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	return alert, nil
}

func (s *AlertService) DeleteAlert(userID, alertID uint) error {
	result := s.db.Where("user_id = ?", userID).Delete(&models.PriceAlert{}, alertID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("alert", alertID)
	}
	return nil
}

// ProcessPriceChange evaluates all active alerts for the changed product and
// delivers on each alert's channels. Delivery failures are logged per channel
// and never abort the remaining alerts.
func (s *AlertService) ProcessPriceChange(event *models.PriceChangeEvent) error {
	var alerts []models.PriceAlert
	if err := s.db.Preload("User").
		Where("product_id = ? AND is_active = ?", event.ProductID, true).
		Find(&alerts).Error; err != nil {
		return fmt.Errorf("failed to load alerts: %w", err)
	}

	now := time.Now().UTC()
	for i := range alerts {
		alert := &alerts[i]

		if !ShouldTrigger(alert.Condition, alert.ThresholdPrice, event.NewPrice) {
			continue
		}
		if InCooldown(alert.LastTriggeredAt, alert.CooldownMinutes, now) {
			continue
		}

		s.deliver(alert, event)

		if err := s.db.Model(alert).Update("last_triggered_at", now).Error; err != nil {
			logrus.WithError(err).WithField("alert_id", alert.ID).
				Error("Failed to record alert trigger time")
		}
	}

	return nil
}

func (s *AlertService) deliver(alert *models.PriceAlert, event *models.PriceChangeEvent) {
	log := logrus.WithFields(logrus.Fields{
		"alert_id":   alert.ID,
		"user_id":    alert.UserID,
		"product_id": event.ProductID,
	})

	for _, channel := range alert.Channels {
		switch models.NotificationChannel(channel) {
		case models.ChannelEmail:
			if err := s.notifier.SendAlertEmail(&alert.User, event); err != nil {
				log.WithError(err).Error("Failed to send alert email")
			}
		case models.ChannelSMS:
			if err := s.notifier.SendAlertSMS(&alert.User, event); err != nil {
				log.WithError(err).Error("Failed to send alert SMS")
			}
		case models.ChannelWebSocket:
			// Already covered by the hub broadcast.
		default:
			log.WithField("channel", channel).Warn("Unknown alert channel")
		}
	}
}

// ShouldTrigger reports whether a new price satisfies an alert condition.
func ShouldTrigger(condition models.AlertCondition, threshold, newPrice float64) bool {
	switch condition {
	case models.AlertConditionBelow:
		return newPrice < threshold
	case models.AlertConditionAbove:
		return newPrice > threshold
	case models.AlertConditionExact:
		return math.Abs(newPrice-threshold) <= exactMatchTolerance
	default:
		return false
	}
}

// InCooldown reports whether an alert triggered too recently to fire again.
func InCooldown(lastTriggered *time.Time, cooldownMinutes int, now time.Time) bool {
	if lastTriggered == nil || cooldownMinutes <= 0 {
		return false
	}
	return now.Sub(*lastTriggered) < time.Duration(cooldownMinutes)*time.Minute
}
