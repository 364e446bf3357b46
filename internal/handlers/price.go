// internal/handlers/price.go
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricepulse/pricepulse-backend/internal/services"
	"github.com/pricepulse/pricepulse-backend/internal/utils"
)

type PriceHandler struct {
	priceService *services.PriceService
}

func NewPriceHandler(priceService *services.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// POST /products/:id/prices
func (h *PriceHandler) AddPriceRecord(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AddPriceRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	record, err := h.priceService.AddPriceRecord(productID, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, record)
}

// GET /products/:id/prices
func (h *PriceHandler) GetPriceHistory(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params, ok := historyParamsFromQuery(c)
	if !ok {
		return
	}

	history, err := h.priceService.GetHistory(productID, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, history)
}

// GET /price-history?product_id=N
func (h *PriceHandler) GetPriceHistoryByQuery(c *gin.Context) {
	productIDStr := c.Query("product_id")
	if productIDStr == "" {
		utils.BadRequestResponse(c, "product_id is required", nil)
		return
	}
	productID, err := strconv.ParseUint(productIDStr, 10, 32)
	if err != nil || productID == 0 {
		utils.BadRequestResponse(c, "Invalid product_id", nil)
		return
	}

	params, ok := historyParamsFromQuery(c)
	if !ok {
		return
	}

	history, err := h.priceService.GetHistory(uint(productID), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, history)
}

func historyParamsFromQuery(c *gin.Context) (services.HistoryParams, bool) {
	var params services.HistoryParams

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			utils.BadRequestResponse(c, "from must be an RFC 3339 timestamp", nil)
			return params, false
		}
		params.From = &from
	}

	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			utils.BadRequestResponse(c, "to must be an RFC 3339 timestamp", nil)
			return params, false
		}
		params.To = &to
	}

	if providerIDStr := c.Query("provider_id"); providerIDStr != "" {
		providerID, err := strconv.ParseUint(providerIDStr, 10, 32)
		if err != nil || providerID == 0 {
			utils.BadRequestResponse(c, "Invalid provider_id", nil)
			return params, false
		}
		id := uint(providerID)
		params.ProviderID = &id
	}

	return params, true
}
