// internal/services/notification_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepulse/pricepulse-backend/internal/config"
	"github.com/pricepulse/pricepulse-backend/internal/models"
)

func TestSendAlertSMSRequiresPhoneNumber(t *testing.T) {
	svc := NewNotificationService(nil, &config.Config{}, nil)

	user := &models.User{Email: "user@example.com", Name: "Test User"}
	event := &models.PriceChangeEvent{ProductName: "Widget", OldPrice: 10, NewPrice: 8}

	err := svc.SendAlertSMS(user, event)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestSendAlertEmailSkipsWhenUnconfigured(t *testing.T) {
	svc := NewNotificationService(nil, &config.Config{}, nil)

	user := &models.User{Email: "user@example.com", Name: "Test User"}
	event := &models.PriceChangeEvent{
		ProductName: "Widget",
		OldPrice:    10.00,
		NewPrice:    8.00,
		Currency:    "USD",
	}

	// No SMTP host configured: delivery is logged and skipped, not an error.
	assert.NoError(t, svc.SendAlertEmail(user, event))
}

func TestRenderTemplate(t *testing.T) {
	svc := NewNotificationService(nil, &config.Config{}, nil)

	out, err := svc.renderTemplate("Hello {{.Name}}, {{.ProductName}} is now {{.NewPrice}}", map[string]interface{}{
		"Name":        "Ada",
		"ProductName": "Widget",
		"NewPrice":    "8.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, Widget is now 8.00", out)

	_, err = svc.renderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}
