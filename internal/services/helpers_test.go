// internal/services/helpers_test.go
package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pricepulse/pricepulse-backend/internal/models"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Provider{},
		&models.Product{},
		&models.PriceRecord{},
		&models.PriceAlert{},
	))

	return db
}

func seedProvider(t *testing.T, db *gorm.DB) *models.Provider {
	t.Helper()

	provider := &models.Provider{Name: "test-provider", RateLimit: 600, IsActive: true}
	require.NoError(t, db.Create(provider).Error)
	return provider
}

// recordingNotifier captures dispatched events for assertions.
type recordingNotifier struct {
	events []*models.PriceChangeEvent
}

func (n *recordingNotifier) NotifyPriceChange(event *models.PriceChangeEvent) {
	n.events = append(n.events, event)
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
