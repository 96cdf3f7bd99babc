package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/utils"
)

// DistributorHandler exposes supplier records and payable balances.
type DistributorHandler struct {
	distributorRepo *repository.DistributorRepository
}

// NewDistributorHandler constructs a DistributorHandler.
func NewDistributorHandler(distributorRepo *repository.DistributorRepository) *DistributorHandler {
	return &DistributorHandler{distributorRepo: distributorRepo}
}

// ListDistributors handles GET /v1/distributors.
func (h *DistributorHandler) ListDistributors(c *gin.Context) {
	distributors, err := h.distributorRepo.GetAll()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list distributors")
		return
	}
	utils.Success(c, http.StatusOK, "Distributors retrieved", distributors)
}

// CreateDistributor handles POST /v1/distributors.
func (h *DistributorHandler) CreateDistributor(c *gin.Context) {
	var distributor models.Distributor
	if err := c.ShouldBindJSON(&distributor); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if distributor.Name == "" {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Name is required")
		return
	}
	if distributor.PaymentStatus == "" {
		distributor.PaymentStatus = models.PaymentStatusPaid
	}
	if err := h.distributorRepo.Create(&distributor); err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create distributor")
		return
	}
	utils.Success(c, http.StatusCreated, "Distributor created", distributor)
}

// UpdateDistributor handles PUT /v1/distributors/:id.
func (h *DistributorHandler) UpdateDistributor(c *gin.Context) {
	var distributor models.Distributor
	if err := c.ShouldBindJSON(&distributor); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	distributor.DistributorID = c.Param("id")
	if err := h.distributorRepo.Update(&distributor); err != nil {
		if errors.Is(err, utils.ErrDistributorNotFound) {
			utils.Error(c, http.StatusNotFound, "DISTRIBUTOR_NOT_FOUND", "Distributor does not exist")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update distributor")
		return
	}
	utils.Success(c, http.StatusOK, "Distributor updated", distributor)
}

// DeleteDistributor handles DELETE /v1/distributors/:id.
func (h *DistributorHandler) DeleteDistributor(c *gin.Context) {
	if err := h.distributorRepo.Delete(c.Param("id")); err != nil {
		if errors.Is(err, utils.ErrDistributorNotFound) {
			utils.Error(c, http.StatusNotFound, "DISTRIBUTOR_NOT_FOUND", "Distributor does not exist")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete distributor")
		return
	}
	utils.Success(c, http.StatusOK, "Distributor deleted", nil)
}

// RecordPayment handles POST /v1/distributors/:id/payments.
func (h *DistributorHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a positive number")
		return
	}
	distributor, err := h.distributorRepo.RecordPayment(c.Param("id"), req.Amount)
	if err != nil {
		if errors.Is(err, utils.ErrDistributorNotFound) {
			utils.Error(c, http.StatusNotFound, "DISTRIBUTOR_NOT_FOUND", "Distributor does not exist")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record payment")
		return
	}
	utils.Success(c, http.StatusOK, "Payment recorded", distributor)
}
