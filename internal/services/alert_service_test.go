// internal/services/alert_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pricepulse/pricepulse-backend/internal/models"
)

func TestShouldTrigger(t *testing.T) {
	tests := []struct {
		name      string
		condition models.AlertCondition
		threshold float64
		newPrice  float64
		expected  bool
	}{
		{"below triggers under threshold", models.AlertConditionBelow, 50.00, 49.99, true},
		{"below does not trigger at threshold", models.AlertConditionBelow, 50.00, 50.00, false},
		{"below does not trigger above threshold", models.AlertConditionBelow, 50.00, 55.00, false},
		{"above triggers over threshold", models.AlertConditionAbove, 50.00, 50.01, true},
		{"above does not trigger at threshold", models.AlertConditionAbove, 50.00, 50.00, false},
		{"exact triggers at threshold", models.AlertConditionExact, 50.00, 50.00, true},
		{"exact triggers within tolerance", models.AlertConditionExact, 50.00, 50.01, true},
		{"exact does not trigger outside tolerance", models.AlertConditionExact, 50.00, 50.02, false},
		{"unknown condition never triggers", models.AlertCondition("sideways"), 50.00, 10.00, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldTrigger(tt.condition, tt.threshold, tt.newPrice))
		})
	}
}

func TestInCooldown(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Never triggered
	assert.False(t, InCooldown(nil, 60, now))

	// Triggered 30 minutes ago with a 60 minute cooldown
	thirtyAgo := now.Add(-30 * time.Minute)
	assert.True(t, InCooldown(&thirtyAgo, 60, now))

	// Triggered 90 minutes ago with a 60 minute cooldown
	ninetyAgo := now.Add(-90 * time.Minute)
	assert.False(t, InCooldown(&ninetyAgo, 60, now))

	// Zero cooldown never blocks
	justNow := now.Add(-time.Second)
	assert.False(t, InCooldown(&justNow, 0, now))
}
