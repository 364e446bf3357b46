// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pricepulse/pricepulse-backend/internal/config"
	"github.com/pricepulse/pricepulse-backend/internal/models"
	"github.com/pricepulse/pricepulse-backend/internal/services"
)

// Scheduler periodically fetches quotes from every active provider for every
// active product and records them through the price service, which handles
// change detection and notification.
type Scheduler struct {
	config    *config.Config
	products  *services.ProductService
	providers *services.ProviderService
	prices    *services.PriceService
	scraper   *services.ScraperService
}

func New(cfg *config.Config, products *services.ProductService, providers *services.ProviderService,
	prices *services.PriceService, scraper *services.ScraperService) *Scheduler {
	return &Scheduler{
		config:    cfg,
		products:  products,
		providers: providers,
		prices:    prices,
		scraper:   scraper,
	}
}

// Run blocks until the context is cancelled. The first pass happens
// immediately, subsequent passes on the configured interval.
func (s *Scheduler) Run(ctx context.Context) {
	interval := time.Duration(s.config.Scraper.IntervalSeconds) * time.Second
	logrus.WithField("interval", interval).Info("Price scheduler started")

	s.runPass(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Price scheduler stopped")
			return
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context) {
	started := time.Now()

	providers, err := s.providers.ListActiveProviders()
	if err != nil {
		logrus.WithError(err).Error("Scheduler failed to load providers")
		return
	}
	products, err := s.products.ListActiveProducts()
	if err != nil {
		logrus.WithError(err).Error("Scheduler failed to load products")
		return
	}

	var fetched, failed int
	for i := range providers {
		provider := &providers[i]
		for j := range products {
			if ctx.Err() != nil {
				return
			}
			if s.fetchAndRecord(ctx, provider, &products[j]) {
				fetched++
			} else {
				failed++
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"providers": len(providers),
		"products":  len(products),
		"fetched":   fetched,
		"failed":    failed,
		"duration":  time.Since(started).String(),
	}).Info("Price scheduler pass complete")
}

func (s *Scheduler) fetchAndRecord(ctx context.Context, provider *models.Provider, product *models.Product) bool {
	log := logrus.WithFields(logrus.Fields{
		"provider_id": provider.ID,
		"product_id":  product.ID,
	})

	quote, err := s.scraper.FetchQuote(ctx, provider, product)
	if err != nil {
		log.WithError(err).Warn("Quote fetch failed")
		return false
	}

	available := quote.Available
	_, err = s.prices.AddPriceRecord(product.ID, &services.AddPriceRecordRequest{
		ProviderID:  provider.ID,
		Price:       quote.Price,
		Currency:    quote.Currency,
		IsAvailable: &available,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to record fetched price")
		return false
	}

	return true
}
