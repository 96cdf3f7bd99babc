package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/utils"
)

// CustomerHandler exposes the credit customer book.
type CustomerHandler struct {
	customerRepo *repository.CustomerRepository
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(customerRepo *repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customerRepo: customerRepo}
}

// ListCustomers handles GET /v1/customers.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customerRepo.GetAll()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list customers")
		return
	}
	utils.Success(c, http.StatusOK, "Customers retrieved", customers)
}

// CreateCustomer handles POST /v1/customers.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if customer.FullName == "" || customer.Phone == "" {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Full name and phone are required")
		return
	}
	customer.Phone = utils.LocalFormat(customer.Phone)
	if customer.Status == "" {
		customer.Status = models.CreditStatusPaid
	}
	if err := h.customerRepo.Create(&customer); err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create customer")
		return
	}
	utils.Success(c, http.StatusCreated, "Customer created", customer)
}

// DeleteCustomer handles DELETE /v1/customers/:id.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerRepo.Delete(c.Param("id")); err != nil {
		if errors.Is(err, utils.ErrCustomerNotFound) {
			utils.Error(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer does not exist")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete customer")
		return
	}
	utils.Success(c, http.StatusOK, "Customer deleted", nil)
}

type recordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// RecordPayment handles POST /v1/customers/:id/payments. The amount is
// clamped so the balance never goes negative.
func (h *CustomerHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a positive number")
		return
	}
	customer, err := h.customerRepo.RecordPayment(c.Param("id"), req.Amount)
	if err != nil {
		if errors.Is(err, utils.ErrCustomerNotFound) {
			utils.Error(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer does not exist")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record payment")
		return
	}
	utils.Success(c, http.StatusOK, "Payment recorded", customer)
}
