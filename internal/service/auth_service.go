package service

import (
	"context"
	"errors"
	"strings"

	"github.com/opsdesk/helpdesk-service/internal/auth"
	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/repository"
	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// AuthService coordinates technician login.
type AuthService struct {
	technicians repository.TechnicianRepository
	tokenMgr    *auth.TokenManager
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	TechnicianRepo repository.TechnicianRepository
	Tokens         *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{technicians: deps.TechnicianRepo, tokenMgr: deps.Tokens}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// LoginResult is an issued technician session.
type LoginResult struct {
	Token      string
	Session    domain.Session
	Technician *domain.Technician
}

// Login checks a technician's password and issues a session token. Unknown ids and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, technicianID, password string) (*LoginResult, error) {
	tech, err := s.technicians.FindByID(ctx, strings.TrimSpace(technicianID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(tech.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, session, err := s.tokenMgr.Issue(tech.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, Session: session, Technician: tech}, nil
}
