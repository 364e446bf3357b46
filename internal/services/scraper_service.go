// internal/services/scraper_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pricepulse/pricepulse-backend/internal/config"
	"github.com/pricepulse/pricepulse-backend/internal/models"
)

var scraperUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// Quote is a single price observation fetched from a provider.
type Quote struct {
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Available bool    `json:"available"`
}

type ScraperService struct {
	config     *config.Config
	httpClient *http.Client

	mtx      sync.Mutex
	limiters map[uint]*rate.Limiter
}

func NewScraperService(cfg *config.Config) *ScraperService {
	return &ScraperService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Scraper.RequestTimeout) * time.Second,
		},
		limiters: make(map[uint]*rate.Limiter),
	}
}

// FetchQuote obtains the current price of a product from a provider. A
// provider without a base URL is treated as a simulated source.
func (s *ScraperService) FetchQuote(ctx context.Context, provider *models.Provider, product *models.Product) (*Quote, error) {
	if provider.BaseURL == "" {
		return s.simulateQuote(product), nil
	}

	if err := s.limiterFor(provider).Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= s.config.Scraper.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(BackoffDelay(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		quote, retryable, err := s.fetchOnce(ctx, provider, product)
		if err == nil {
			return quote, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, models.NewDependencyError(provider.Name, lastErr)
}

func (s *ScraperService) fetchOnce(ctx context.Context, provider *models.Provider, product *models.Product) (*Quote, bool, error) {
	endpoint := fmt.Sprintf("%s/quote?product=%s", provider.BaseURL, url.QueryEscape(product.Name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", scraperUserAgents[rand.Intn(len(scraperUserAgents))])
	req.Header.Set("Accept", "application/json")
	if provider.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+provider.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Proceed below.
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("provider returned status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, err
	}

	var quote Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, false, fmt.Errorf("invalid quote payload: %w", err)
	}
	if quote.Price <= 0 {
		return nil, false, fmt.Errorf("quote has non-positive price %.2f", quote.Price)
	}
	if quote.Currency == "" {
		quote.Currency = "USD"
	}

	return &quote, false, nil
}

// simulateQuote drifts the product's current price by up to ten percent in
// either direction. Products without a known price start around 100.
func (s *ScraperService) simulateQuote(product *models.Product) *Quote {
	base := 100.0
	if product.CurrentPrice != nil {
		base = *product.CurrentPrice
	}

	drift := (rand.Float64()*2 - 1) * 0.10
	price := base * (1 + drift)
	if price < 0.01 {
		price = 0.01
	}

	return &Quote{
		Price:     float64(int(price*100)) / 100,
		Currency:  "USD",
		Available: true,
	}
}

func (s *ScraperService) limiterFor(provider *models.Provider) *rate.Limiter {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	limiter, exists := s.limiters[provider.ID]
	if !exists {
		// A provider without a configured rate is not throttled; a zero-rate
		// limiter would block every fetch after the first.
		perSecond := rate.Inf
		if provider.RateLimit > 0 {
			perSecond = rate.Limit(float64(provider.RateLimit) / 60.0)
		}
		limiter = rate.NewLimiter(perSecond, 1)
		s.limiters[provider.ID] = limiter
	}
	return limiter
}

// BackoffDelay returns the wait before retry n (1-based), doubling each
// attempt and capped at 30 seconds.
func BackoffDelay(attempt int) time.Duration {
	delay := time.Second << (attempt - 1)
	if delay > 30*time.Second {
		return 30 * time.Second
	}
	return delay
}
