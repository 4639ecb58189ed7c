package dto

import (
	"time"

	"github.com/opsdesk/helpdesk-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	TechnicianID string `json:"technicianId" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session.
type LoginResponse struct {
	AccessToken string             `json:"accessToken"`
	TokenType   string             `json:"tokenType"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Technician  TechnicianResponse `json:"technician"`
}

// TechnicianResponse is the public view of a registry record.
type TechnicianResponse struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Extension      string                `json:"extension"`
	Email          string                `json:"email,omitempty"`
	Specialization domain.Specialization `json:"specialization"`
}

// NewTechnicianResponse maps a technician, omitting the password hash.
func NewTechnicianResponse(t *domain.Technician) TechnicianResponse {
	return TechnicianResponse{
		ID:             t.ID,
		Name:           t.Name,
		Extension:      t.Extension,
		Email:          t.Email,
		Specialization: t.Specialization,
	}
}
