package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/service"
	"github.com/kinthithe/pos-api/internal/utils"
)

// AuthHandler exposes login and logout for terminal operators.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Username and password are required")
		return
	}

	token, user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCredentials):
			utils.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		case errors.Is(err, utils.ErrAccountDisabled):
			utils.Error(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled")
		default:
			utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		}
		return
	}

	utils.Success(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authService.Logout(c.GetString("user_id"))
	utils.Success(c, http.StatusOK, "Logout recorded", nil)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// CreateUser handles POST /v1/users, admin only.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_BODY", "Username and a password of at least 8 characters are required")
		return
	}
	role := models.UserRole(req.Role)
	if role != models.RoleAdmin {
		role = models.RoleStaff
	}
	user, err := h.authService.CreateUser(req.Username, req.Password, req.FullName, role)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}
	utils.Success(c, http.StatusCreated, "User created", user)
}
