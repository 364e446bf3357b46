// internal/services/provider_service.go
package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pricepulse/pricepulse-backend/internal/models"
	"github.com/pricepulse/pricepulse-backend/internal/utils"
)

type ProviderService struct {
	db *gorm.DB
}

func NewProviderService(db *gorm.DB) *ProviderService {
	return &ProviderService{db: db}
}

type CreateProviderRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	BaseURL   string `json:"base_url,omitempty" validate:"omitempty,url"`
	RateLimit *int   `json:"rate_limit,omitempty" validate:"omitempty,gt=0"`
}

type UpdateProviderRequest struct {
	BaseURL   *string `json:"base_url,omitempty" validate:"omitempty,url"`
	RateLimit *int    `json:"rate_limit,omitempty" validate:"omitempty,gt=0"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// CreateProvider registers a price source and issues its API key. The key is
// returned once here and stored hashed-equivalent opaque, never serialized.
func (s *ProviderService) CreateProvider(req *CreateProviderRequest) (*models.Provider, string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, "", utils.ValidationErrorFrom(err)
	}

	var count int64
	if err := s.db.Model(&models.Provider{}).
		Where("LOWER(name) = ?", strings.ToLower(req.Name)).
		Count(&count).Error; err != nil {
		return nil, "", fmt.Errorf("failed to check provider name: %w", err)
	}
	if count > 0 {
		return nil, "", models.NewConflictError("provider %q already exists", req.Name)
	}

	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate API key: %w", err)
	}

	provider := models.Provider{
		Name:      req.Name,
		BaseURL:   req.BaseURL,
		APIKey:    apiKey,
		RateLimit: 100,
		IsActive:  true,
	}
	if req.RateLimit != nil {
		provider.RateLimit = *req.RateLimit
	}

	if err := s.db.Create(&provider).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create provider: %w", err)
	}

	return &provider, apiKey, nil
}

func (s *ProviderService) GetProvider(id uint) (*models.Provider, error) {
	var provider models.Provider
	if err := s.db.First(&provider, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("provider", id)
		}
		return nil, fmt.Errorf("failed to fetch provider: %w", err)
	}
	return &provider, nil
}

func (s *ProviderService) ListProviders(params utils.PaginationParams) ([]models.Provider, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, models.NewValidationError(err.Error())
	}

	query := s.db.Model(&models.Provider{})
	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count providers: %w", err)
	}

	providers := make([]models.Provider, 0)
	query = utils.ApplySort(query, params, []string{"name", "created_at"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&providers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list providers: %w", err)
	}

	return providers, total, nil
}

func (s *ProviderService) UpdateProvider(id uint, req *UpdateProviderRequest) (*models.Provider, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationErrorFrom(err)
	}

	provider, err := s.GetProvider(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.BaseURL != nil {
		updates["base_url"] = *req.BaseURL
	}
	if req.RateLimit != nil {
		updates["rate_limit"] = *req.RateLimit
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return provider, nil
	}

	if err := s.db.Model(provider).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}

	return provider, nil
}

// DeactivateProvider stops a source from being scraped. Providers are never
// hard-deleted so historical price records keep a valid reference.
func (s *ProviderService) DeactivateProvider(id uint) error {
	provider, err := s.GetProvider(id)
	if err != nil {
		return err
	}
	if !provider.IsActive {
		return nil
	}
	if err := s.db.Model(provider).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate provider: %w", err)
	}
	return nil
}

// ListActiveProviders returns every provider eligible for scheduled scraping.
func (s *ProviderService) ListActiveProviders() ([]models.Provider, error) {
	var providers []models.Provider
	if err := s.db.Where("is_active = ?", true).Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("failed to list active providers: %w", err)
	}
	return providers, nil
}
