package service

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/utils"
)

// AuthService authenticates terminal operators and keeps the audit trail.
// Session state lives in the issued JWT, not in process globals; every
// request derives its operator from the token.
type AuthService struct {
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditRepository
}

// NewAuthService constructs an AuthService.
func NewAuthService(userRepo *repository.UserRepository, auditRepo *repository.AuditRepository) *AuthService {
	return &AuthService{userRepo: userRepo, auditRepo: auditRepo}
}

// Login verifies credentials and returns a session token with the account.
func (s *AuthService) Login(username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		log.Warn().Str("username", username).Msg("Login attempt for unknown user")
		return "", nil, utils.ErrInvalidCredentials
	}
	if user.Status != models.UserActive {
		log.Warn().Str("username", username).Msg("Login attempt on disabled account")
		return "", nil, utils.ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("username", username).Msg("Password verification failed")
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.UserID, user.Username, string(user.Role))
	if err != nil {
		return "", nil, err
	}

	if err := s.userRepo.TouchLastLogin(user.UserID); err != nil {
		log.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to stamp last login")
	}
	if err := s.auditRepo.Log(user.UserID, "Terminal Access Authenticated"); err != nil {
		log.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to write audit entry")
	}

	log.Info().Str("username", username).Msg("Login successful")
	return token, user, nil
}

// Logout records the end of a terminal session. The token itself simply
// expires; the audit entry is what matters operationally.
func (s *AuthService) Logout(userID string) {
	if err := s.auditRepo.Log(userID, "Terminal Session Terminated"); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to write audit entry")
	}
}

// CreateUser registers a new operator account with a bcrypt-hashed password.
func (s *AuthService) CreateUser(username, password, fullName string, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		FullName:     &fullName,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.UserActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
