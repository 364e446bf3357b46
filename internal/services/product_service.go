// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pricepulse/pricepulse-backend/internal/database"
	"github.com/pricepulse/pricepulse-backend/internal/models"
	"github.com/pricepulse/pricepulse-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	SKU         *string  `json:"sku,omitempty" validate:"omitempty,max=100"`
	URL         string   `json:"url,omitempty" validate:"omitempty,url,max=2048"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    string   `json:"category,omitempty" validate:"omitempty,product_category"`
	Brand       string   `json:"brand,omitempty" validate:"omitempty,max=100"`
	ImageURL    string   `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Tags        []string `json:"tags,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	SKU         *string  `json:"sku,omitempty" validate:"omitempty,max=100"`
	URL         *string  `json:"url,omitempty" validate:"omitempty,url,max=2048"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,product_category"`
	Brand       *string  `json:"brand,omitempty" validate:"omitempty,max=100"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
	Tags        []string `json:"tags,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Category        string   `json:"category,omitempty"`
	Brand           string   `json:"brand,omitempty"`
	PriceMin        *float64 `json:"price_min,omitempty"`
	PriceMax        *float64 `json:"price_max,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	IncludeInactive bool     `json:"include_inactive,omitempty"`
}

// productSortFields are the columns search results may be ordered by.
var productSortFields = []string{"name", "brand", "category", "current_price", "created_at", "updated_at"}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationErrorFrom(err)
	}

	if req.SKU != nil && *req.SKU != "" {
		if err := s.checkSKUAvailable(*req.SKU, 0); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		Name:         req.Name,
		SKU:          normalizeSKU(req.SKU),
		URL:          req.URL,
		Description:  req.Description,
		Category:     req.Category,
		Brand:        req.Brand,
		ImageURL:     req.ImageURL,
		CurrentPrice: req.Price,
		Status:       models.ProductStatusActive,
		IsActive:     true,
		Tags:         req.Tags,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) GetProduct(id uint, includeDeleted bool) (*models.Product, error) {
	query := s.db
	if includeDeleted {
		query = query.Unscoped()
	}

	var product models.Product
	if err := query.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

func (s *ProductService) UpdateProduct(id uint, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationErrorFrom(err)
	}

	product, err := s.GetProduct(id, false)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil && *req.SKU != "" {
		if err := s.checkSKUAvailable(*req.SKU, id); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SKU != nil {
		// An empty SKU clears the column; the unique index must not see "".
		if *req.SKU == "" {
			updates["sku"] = nil
		} else {
			updates["sku"] = *req.SKU
		}
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		updates["is_active"] = *req.Status == string(models.ProductStatusActive)
	}
	if req.Tags != nil {
		updates["tags"] = req.Tags
	}

	if len(updates) == 0 {
		return product, nil
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// SoftDeleteProduct hides the product from default listings. Calling it on an
// already-deleted product succeeds without effect.
func (s *ProductService) SoftDeleteProduct(id uint) error {
	var product models.Product
	if err := s.db.Unscoped().First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("product", id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if product.DeletedAt.Valid {
		return nil
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Model(&product).Updates(map[string]interface{}{
			"is_active": false,
			"status":    models.ProductStatusDiscontinued,
		}).Error; err != nil {
			return err
		}
		// gorm fills deleted_at; price records are untouched on purpose.
		return tx.Delete(&product).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *ProductService) RestoreProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.Unscoped().First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !product.DeletedAt.Valid {
		return nil, models.NewValidationError("product is not deleted")
	}

	if err := s.db.Unscoped().Model(&product).Updates(map[string]interface{}{
		"deleted_at": nil,
		"is_active":  true,
		"status":     models.ProductStatusActive,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to restore product: %w", err)
	}

	return s.GetProduct(id, false)
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, models.NewValidationError(err.Error())
	}

	query := s.db.Model(&models.Product{})

	// All supplied filters apply conjunctively.
	if params.IncludeInactive {
		query = query.Unscoped()
	} else {
		query = query.Where("is_active = ?", true)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Brand != "" {
		query = query.Where("LOWER(brand) LIKE ?", "%"+strings.ToLower(params.Brand)+"%")
	}

	if params.PriceMin != nil {
		query = query.Where("current_price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("current_price <= ?", *params.PriceMax)
	}

	if len(params.Tags) > 0 {
		query = query.Where("tags && ?", pq.StringArray(params.Tags))
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting and pagination
	query = utils.ApplySort(query, params.PaginationParams, productSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

type FacetCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

func (s *ProductService) GetCategoriesWithCounts() ([]FacetCount, error) {
	var facets []FacetCount
	err := s.db.Model(&models.Product{}).
		Select("COALESCE(NULLIF(category, ''), 'Uncategorized') AS value, COUNT(id) AS count").
		Where("is_active = ?", true).
		Group("value").
		Order("count DESC").
		Scan(&facets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category counts: %w", err)
	}

	return facets, nil
}

func (s *ProductService) GetBrandsWithCounts(category string) ([]FacetCount, error) {
	query := s.db.Model(&models.Product{}).
		Select("brand AS value, COUNT(id) AS count").
		Where("is_active = ?", true).
		Where("brand <> ''")

	if category != "" {
		query = query.Where("category = ?", category)
	}

	var facets []FacetCount
	if err := query.Group("brand").Order("count DESC").Scan(&facets).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch brand counts: %w", err)
	}

	return facets, nil
}

// SetProductImage stores the uploaded image URL against the product.
func (s *ProductService) SetProductImage(id uint, imageURL string) (*models.Product, error) {
	product, err := s.GetProduct(id, false)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(product).Update("image_url", imageURL).Error; err != nil {
		return nil, fmt.Errorf("failed to update product image: %w", err)
	}

	return product, nil
}

// ListActiveProducts returns every product eligible for scheduled price
// fetches.
func (s *ProductService) ListActiveProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = ?", true).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	return products, nil
}

// normalizeSKU maps an absent or empty SKU to NULL so cleared SKUs never
// collide on the unique index.
func normalizeSKU(sku *string) *string {
	if sku == nil || *sku == "" {
		return nil
	}
	return sku
}

func (s *ProductService) checkSKUAvailable(sku string, excludeID uint) error {
	query := s.db.Model(&models.Product{}).Where("sku = ?", sku)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check SKU: %w", err)
	}

	if count > 0 {
		return models.NewConflictError("product with SKU %q already exists", sku)
	}

	return nil
}
