package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"indumart/internal/common"
	"indumart/internal/models"
	"indumart/internal/repositories"
	"indumart/internal/services"
)

// AuthHandlers handles admin authentication HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	adminRepo   repositories.AdminRepository
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, adminRepo repositories.AdminRepository) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		adminRepo:   adminRepo,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	models.TokenResponse
	Admin *models.Admin `json:"admin"`
}

// Login handles admin login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	email, ok := common.NormalizeEmail(req.Email)
	if !ok || req.Password == "" {
		return common.SendClientError(c, "Email and password are required")
	}

	admin, err := h.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Printf("ERROR: admin lookup failed: %v", err)
		return common.SendServerError(c, "Login failed")
	}
	if admin == nil {
		return common.SendUnauthorizedError(c)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return common.SendUnauthorizedError(c)
	}

	tokens, err := h.authService.GenerateTokens(ctx, admin.ID)
	if err != nil {
		log.Printf("ERROR: token generation failed: %v", err)
		return common.SendServerError(c, "Failed to generate tokens")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		TokenResponse: *tokens,
		Admin:         admin,
	})
}

// Refresh handles refresh-token rotation
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return common.SendClientError(c, "refresh_token is required")
	}

	tokens, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Me handles GET /admin/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	adminID, ok := common.GetAdminIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	admin, err := h.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		log.Printf("ERROR: admin lookup failed: %v", err)
		return common.SendServerError(c, "Failed to retrieve admin")
	}
	if admin == nil {
		return common.SendNotFoundError(c, "admin")
	}

	return c.JSON(http.StatusOK, admin)
}
