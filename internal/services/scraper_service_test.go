// internal/services/scraper_service_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepulse/pricepulse-backend/internal/config"
	"github.com/pricepulse/pricepulse-backend/internal/models"
)

func testScraperConfig() *config.Config {
	return &config.Config{
		Scraper: config.ScraperConfig{
			Enabled:         true,
			IntervalSeconds: 300,
			RequestTimeout:  5,
			MaxRetries:      1,
		},
	}
}

func TestFetchQuoteFromProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "Espresso Machine", r.URL.Query().Get("product"))
		assert.Equal(t, "Bearer pp_testkey", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price": 199.99, "currency": "EUR", "available": true}`))
	}))
	defer server.Close()

	scraper := NewScraperService(testScraperConfig())
	provider := &models.Provider{BaseURL: server.URL, APIKey: "pp_testkey", RateLimit: 600}
	provider.ID = 1
	product := &models.Product{Name: "Espresso Machine"}
	product.ID = 1

	quote, err := scraper.FetchQuote(context.Background(), provider, product)
	require.NoError(t, err)
	assert.Equal(t, 199.99, quote.Price)
	assert.Equal(t, "EUR", quote.Currency)
	assert.True(t, quote.Available)
}

func TestFetchQuoteDefaultsCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": 10.00, "available": true}`))
	}))
	defer server.Close()

	scraper := NewScraperService(testScraperConfig())
	provider := &models.Provider{BaseURL: server.URL, RateLimit: 600}
	provider.ID = 2
	product := &models.Product{Name: "Widget"}

	quote, err := scraper.FetchQuote(context.Background(), provider, product)
	require.NoError(t, err)
	assert.Equal(t, "USD", quote.Currency)
}

func TestFetchQuoteNonRetryableFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	scraper := NewScraperService(testScraperConfig())
	provider := &models.Provider{Name: "flaky", BaseURL: server.URL, RateLimit: 600}
	provider.ID = 3
	product := &models.Product{Name: "Widget"}

	_, err := scraper.FetchQuote(context.Background(), provider, product)
	require.Error(t, err)
	assert.True(t, models.IsDependency(err))
	assert.Equal(t, 1, calls)
}

func TestFetchQuoteRetriesOnRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"price": 15.50, "currency": "USD", "available": true}`))
	}))
	defer server.Close()

	scraper := NewScraperService(testScraperConfig())
	provider := &models.Provider{BaseURL: server.URL, RateLimit: 600}
	provider.ID = 4
	product := &models.Product{Name: "Widget"}

	quote, err := scraper.FetchQuote(context.Background(), provider, product)
	require.NoError(t, err)
	assert.Equal(t, 15.50, quote.Price)
	assert.Equal(t, 2, calls)
}

func TestFetchQuoteRejectsInvalidPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": -5}`))
	}))
	defer server.Close()

	scraper := NewScraperService(testScraperConfig())
	provider := &models.Provider{Name: "bad", BaseURL: server.URL, RateLimit: 600}
	provider.ID = 5
	product := &models.Product{Name: "Widget"}

	_, err := scraper.FetchQuote(context.Background(), provider, product)
	require.Error(t, err)
	assert.True(t, models.IsDependency(err))
}

func TestFetchQuoteSimulatedProvider(t *testing.T) {
	scraper := NewScraperService(testScraperConfig())
	provider := &models.Provider{Name: "simulated"}
	provider.ID = 6

	base := 100.00
	product := &models.Product{Name: "Widget", CurrentPrice: &base}

	for i := 0; i < 50; i++ {
		quote, err := scraper.FetchQuote(context.Background(), provider, product)
		require.NoError(t, err)
		assert.True(t, quote.Available)
		assert.GreaterOrEqual(t, quote.Price, 90.00-0.01)
		assert.LessOrEqual(t, quote.Price, 110.00+0.01)
	}
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, time.Second, BackoffDelay(1))
	assert.Equal(t, 2*time.Second, BackoffDelay(2))
	assert.Equal(t, 4*time.Second, BackoffDelay(3))
	assert.Equal(t, 30*time.Second, BackoffDelay(10))
}

func TestFetchQuoteUnthrottledWhenRateUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price": 5.00, "available": true}`))
	}))
	defer server.Close()

	scraper := NewScraperService(testScraperConfig())
	provider := &models.Provider{Name: "unconfigured", BaseURL: server.URL}
	provider.ID = 7
	product := &models.Product{Name: "Widget"}

	// A zero rate limit must not turn into a limiter that blocks forever.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		quote, err := scraper.FetchQuote(ctx, provider, product)
		require.NoError(t, err)
		assert.Equal(t, 5.00, quote.Price)
	}
}
