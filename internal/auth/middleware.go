package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/repository"
	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated technician.
type Principal struct {
	Session    domain.Session
	Technician *domain.Technician
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens      *TokenManager
	technicians repository.TechnicianRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, technicians repository.TechnicianRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, technicians: technicians}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	session, err := m.tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	tech, err := m.technicians.FindByID(c.UserContext(), session.TechnicianID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("technician not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Session: session, Technician: tech})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated technician.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}
