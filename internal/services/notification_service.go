// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pricepulse/pricepulse-backend/internal/config"
	"github.com/pricepulse/pricepulse-backend/internal/models"
)

// Broadcaster pushes a price-change event to live subscribers. Implemented by
// the WebSocket hub.
type Broadcaster interface {
	BroadcastPriceChange(event *models.PriceChangeEvent)
}

// NotificationService is the change notifier: it packages price-change events
// and fans them out at least once. Channel failures are logged and swallowed,
// never surfaced to the price write that caused them.
type NotificationService struct {
	db          *gorm.DB
	config      *config.Config
	broadcaster Broadcaster
	sms         *SMSService
	alerts      *AlertService
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, cfg *config.Config, broadcaster Broadcaster) *NotificationService {
	s := &NotificationService{
		db:          db,
		config:      cfg,
		broadcaster: broadcaster,
		sms:         NewSMSService(cfg),
	}
	s.alerts = NewAlertService(db, s)
	return s
}

// Alerts exposes the alert sub-service for handlers.
func (s *NotificationService) Alerts() *AlertService {
	return s.alerts
}

func (s *NotificationService) NotifyPriceChange(event *models.PriceChangeEvent) {
	// WebSocket broadcast to product subscribers.
	if s.broadcaster != nil {
		s.broadcaster.BroadcastPriceChange(event)
	}

	// Threshold alerts fan out to the owning users' channels.
	if err := s.alerts.ProcessPriceChange(event); err != nil {
		logrus.WithError(err).WithField("product_id", event.ProductID).
			Error("Failed to process price alerts")
	}

	if event.ChangePercent > 10 || event.ChangePercent < -10 {
		logrus.WithFields(logrus.Fields{
			"product_id":     event.ProductID,
			"product":        event.ProductName,
			"change_percent": fmt.Sprintf("%.1f", event.ChangePercent),
		}).Warn("Significant price change detected")
	}
}

// SendAlertEmail delivers a triggered price alert to the user's inbox.
func (s *NotificationService) SendAlertEmail(user *models.User, event *models.PriceChangeEvent) error {
	tmpl := s.getEmailTemplate("price_alert")

	data := map[string]interface{}{
		"Name":        user.Name,
		"ProductName": event.ProductName,
		"OldPrice":    fmt.Sprintf("%.2f", event.OldPrice),
		"NewPrice":    fmt.Sprintf("%.2f", event.NewPrice),
		"Currency":    event.Currency,
	}

	subject := fmt.Sprintf("Price Alert - %s", event.ProductName)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

// SendAlertSMS delivers a triggered price alert to the user's phone.
func (s *NotificationService) SendAlertSMS(user *models.User, event *models.PriceChangeEvent) error {
	if user.PhoneNumber == "" {
		return models.NewValidationError("user has no phone number")
	}
	return s.sms.SendPriceAlert(user.PhoneNumber, event)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).
			Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf(
		"To: %s\r\nFrom: %s <%s>\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		to, s.config.Email.FromName, s.config.Email.FromEmail, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg); err != nil {
		return models.NewDependencyError("smtp", err)
	}
	return nil
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"price_alert": {
			Subject: "Price Alert",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Price Alert</h2>
	<p>Hello {{.Name}},</p>
	<p>The price of <strong>{{.ProductName}}</strong> changed:</p>
	<p>{{.OldPrice}} {{.Currency}} &rarr; <strong>{{.NewPrice}} {{.Currency}}</strong></p>
	<p>Best regards,<br>PricePulse</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
