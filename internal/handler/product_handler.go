package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/utils"
)

// ProductHandler exposes catalog CRUD.
type ProductHandler struct {
	productRepo *repository.ProductRepository
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productRepo *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

// ListProducts handles GET /v1/products.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productRepo.GetAll()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list products")
		return
	}
	utils.Success(c, http.StatusOK, "Products retrieved", products)
}

// GetProduct handles GET /v1/products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product does not exist")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load product")
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", product)
}

// CreateProduct handles POST /v1/products.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if product.Name == "" || product.Price < 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Name is required and price must not be negative")
		return
	}
	if err := h.productRepo.Create(&product); err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create product")
		return
	}
	utils.Success(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct handles PUT /v1/products/:id.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	product.ProductID = c.Param("id")
	if err := h.productRepo.Update(&product); err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product does not exist")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update product")
		return
	}
	utils.Success(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct handles DELETE /v1/products/:id.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productRepo.Delete(c.Param("id")); err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product does not exist")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete product")
		return
	}
	utils.Success(c, http.StatusOK, "Product deleted", nil)
}
