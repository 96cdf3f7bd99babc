package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/service"
	"github.com/kinthithe/pos-api/internal/utils"
)

// StockHandler exposes delivery intake and batch listings.
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler constructs a StockHandler.
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RecordStockIn handles POST /v1/stock-in.
func (h *StockHandler) RecordStockIn(c *gin.Context) {
	var req service.StockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	req.ReceivedBy = c.GetString("user_id")

	stockIn, err := h.stockService.RecordStockIn(&req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidQuantity):
			utils.Error(c, http.StatusBadRequest, "INVALID_QUANTITY", "Received and accepted quantities are inconsistent")
		case errors.Is(err, utils.ErrProductNotFound):
			utils.Error(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product does not exist")
		case errors.Is(err, utils.ErrDistributorNotFound):
			utils.Error(c, http.StatusNotFound, "DISTRIBUTOR_NOT_FOUND", "Distributor does not exist")
		default:
			utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record delivery")
		}
		return
	}
	utils.Success(c, http.StatusCreated, "Delivery recorded", stockIn)
}

// ListStockIns handles GET /v1/stock-in.
func (h *StockHandler) ListStockIns(c *gin.Context) {
	stockIns, err := h.stockService.ListStockIns()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list deliveries")
		return
	}
	utils.Success(c, http.StatusOK, "Deliveries retrieved", stockIns)
}

// ListBatches handles GET /v1/stock-batches.
func (h *StockHandler) ListBatches(c *gin.Context) {
	batches, err := h.stockService.ListBatches()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list batches")
		return
	}
	utils.Success(c, http.StatusOK, "Batches retrieved", batches)
}
