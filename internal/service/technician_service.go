package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk-service/internal/auth"
	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/identity"
	"github.com/opsdesk/helpdesk-service/internal/repository"
	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// TechnicianService exposes the technician registry.
type TechnicianService struct {
	technicians repository.TechnicianRepository
}

// NewTechnicianService builds the service.
func NewTechnicianService(technicians repository.TechnicianRepository) *TechnicianService {
	return &TechnicianService{technicians: technicians}
}

// List returns every registered technician ordered by id.
func (s *TechnicianService) List(ctx context.Context) ([]domain.Technician, error) {
	technicians, err := s.technicians.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return technicians, nil
}

// Get returns one technician.
func (s *TechnicianService) Get(ctx context.Context, id string) (*domain.Technician, error) {
	tech, err := s.technicians.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return tech, nil
}

// RegistrySeed is the content of the registry files.
type RegistrySeed struct {
	Technicians []repository.TechnicianRecord
	Contacts    identity.Table
}

// SeedRegistry upserts registry file content into the stores, hashing plaintext
// passwords with cost. Existing hashes are kept for records without a password.
func SeedRegistry(ctx context.Context, seed RegistrySeed, technicians repository.TechnicianRepository, contacts repository.ContactRepository, cost int, logger *zap.Logger) error {
	for _, rec := range seed.Technicians {
		tech := rec.Technician()
		if rec.Password != "" {
			hash, err := auth.HashPassword(rec.Password, cost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", rec.ID, err)
			}
			tech.PasswordHash = hash
		}
		if err := technicians.Upsert(ctx, &tech); err != nil {
			return fmt.Errorf("seed technician %s: %w", rec.ID, err)
		}
	}
	for ext, email := range seed.Contacts {
		if err := contacts.Put(ctx, ext, email); err != nil {
			return fmt.Errorf("seed contact %s: %w", ext, err)
		}
	}
	if logger != nil {
		logger.Info("registry seeded",
			zap.Int("technicians", len(seed.Technicians)),
			zap.Int("contacts", len(seed.Contacts)))
	}
	return nil
}
