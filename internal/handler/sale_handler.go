package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/service"
	"github.com/kinthithe/pos-api/internal/utils"
)

// SaleHandler exposes checkout and receipt lookups.
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler constructs a SaleHandler.
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Checkout handles POST /v1/sales/checkout.
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	req.UserID = c.GetString("user_id")

	result, err := h.saleService.Checkout(&req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrEmptyBasket):
			utils.Error(c, http.StatusBadRequest, "EMPTY_BASKET", "Basket has no items")
		case errors.Is(err, utils.ErrInvalidQuantity):
			utils.Error(c, http.StatusBadRequest, "INVALID_QUANTITY", "Quantities must be positive")
		case errors.Is(err, utils.ErrProductNotFound):
			utils.Error(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product does not exist")
		case errors.Is(err, utils.ErrInsufficientStock):
			utils.Error(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock for basket")
		case errors.Is(err, utils.ErrInsufficientTender):
			utils.Error(c, http.StatusBadRequest, "INSUFFICIENT_TENDER", "Amount tendered is below the total")
		default:
			utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record sale")
		}
		return
	}
	utils.Success(c, http.StatusCreated, "Sale recorded", result)
}

// ListSales handles GET /v1/sales with optional page/limit query params.
func (h *SaleHandler) ListSales(c *gin.Context) {
	sales, err := h.saleService.ListSales()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sales")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	total := len(sales)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Sales retrieved", sales[start:end], page, limit, total)
}

// GetReceipt handles GET /v1/sales/receipt/:ref.
func (h *SaleHandler) GetReceipt(c *gin.Context) {
	sales, err := h.saleService.Receipt(c.Param("ref"))
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load receipt")
		return
	}
	if len(sales) == 0 {
		utils.Error(c, http.StatusNotFound, "RECEIPT_NOT_FOUND", "No sales under reference")
		return
	}
	utils.Success(c, http.StatusOK, "Receipt retrieved", gin.H{
		"sales":     sales,
		"printedAt": utils.NowISO(),
	})
}
