package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk-service/internal/api/dto"
	"github.com/opsdesk/helpdesk-service/internal/service"
	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// AuthHandler serves technician login.
type AuthHandler struct {
	auth     *service.AuthService
	validate *validator.Validate
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, v *validator.Validate) *AuthHandler {
	return &AuthHandler{auth: authService, validate: v}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.TechnicianID, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.Session.ExpiresAt,
		Technician:  dto.NewTechnicianResponse(result.Technician),
	}})
}
