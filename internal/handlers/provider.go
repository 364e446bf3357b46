// internal/handlers/provider.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pricepulse/pricepulse-backend/internal/services"
	"github.com/pricepulse/pricepulse-backend/internal/utils"
)

type ProviderHandler struct {
	providerService *services.ProviderService
}

func NewProviderHandler(providerService *services.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerService: providerService}
}

// GET /providers
func (h *ProviderHandler) GetProviders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	providers, total, err := h.providerService.ListProviders(params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(providers, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /providers/:id
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	provider, err := h.providerService.GetProvider(id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, provider)
}

// POST /providers
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req services.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	provider, apiKey, err := h.providerService.CreateProvider(&req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	// The API key is only shown in this response.
	utils.CreatedResponse(c, gin.H{
		"provider": provider,
		"api_key":  apiKey,
	})
}

// PUT /providers/:id
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	provider, err := h.providerService.UpdateProvider(id, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, provider)
}

// DELETE /providers/:id
func (h *ProviderHandler) DeactivateProvider(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.providerService.DeactivateProvider(id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Provider deactivated"})
}
