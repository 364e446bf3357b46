// internal/services/sms_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pricepulse/pricepulse-backend/internal/config"
	"github.com/pricepulse/pricepulse-backend/internal/models"
)

// smsMaxLength is the single-segment SMS limit; longer messages get truncated.
const smsMaxLength = 160

type SMSService struct {
	config     *config.Config
	httpClient *http.Client
}

func NewSMSService(cfg *config.Config) *SMSService {
	return &SMSService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *SMSService) SendPriceAlert(toNumber string, event *models.PriceChangeEvent) error {
	var message string
	if event.NewPrice < event.OldPrice {
		message = fmt.Sprintf("Price Drop Alert! %s: $%.2f -> $%.2f (Save $%.2f)",
			event.ProductName, event.OldPrice, event.NewPrice, event.OldPrice-event.NewPrice)
	} else {
		message = fmt.Sprintf("Price Update: %s: $%.2f -> $%.2f",
			event.ProductName, event.OldPrice, event.NewPrice)
	}

	return s.Send(toNumber, TruncateSMS(message))
}

func (s *SMSService) Send(toNumber, message string) error {
	if s.config.SMS.ProviderURL == "" {
		// SMS not configured, just log
		logrus.WithField("to", toNumber).Info("SMS delivery skipped (provider not configured)")
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"from": s.config.SMS.FromNumber,
		"to":   toNumber,
		"body": message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal SMS payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.config.SMS.ProviderURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.SMS.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.NewDependencyError("sms", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return models.NewDependencyError("sms", fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	return nil
}

// TruncateSMS shortens a message to a single SMS segment.
func TruncateSMS(message string) string {
	if len(message) <= smsMaxLength {
		return message
	}
	return message[:smsMaxLength-3] + "..."
}
