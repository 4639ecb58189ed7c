package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk-service/internal/domain"
)

// TechnicianRepository is the technician registry.
type TechnicianRepository interface {
	ListAll(ctx context.Context) ([]domain.Technician, error)
	FindByID(ctx context.Context, id string) (*domain.Technician, error)
	Upsert(ctx context.Context, tech *domain.Technician) error
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

func (r *technicianRepository) Upsert(ctx context.Context, tech *domain.Technician) error {
	const query = `
        INSERT INTO technicians (id, name, extension, email, specialization, password_hash)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, extension=EXCLUDED.extension,
            email=EXCLUDED.email, specialization=EXCLUDED.specialization,
            password_hash=COALESCE(NULLIF(EXCLUDED.password_hash, ''), technicians.password_hash)`
	_, err := r.pool.Exec(ctx, query,
		tech.ID,
		tech.Name,
		tech.Extension,
		tech.Email,
		string(tech.Specialization),
		tech.PasswordHash,
	)
	return err
}

func (r *technicianRepository) FindByID(ctx context.Context, id string) (*domain.Technician, error) {
	const query = `
        SELECT id, name, extension, email, specialization, password_hash
        FROM technicians WHERE id=$1`
	tech, err := scanTechnician(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return tech, err
}

func (r *technicianRepository) ListAll(ctx context.Context) ([]domain.Technician, error) {
	const query = `
        SELECT id, name, extension, email, specialization, password_hash
        FROM technicians ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		tech, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *tech)
	}
	return result, rows.Err()
}

func scanTechnician(row pgx.Row) (*domain.Technician, error) {
	var (
		tech           domain.Technician
		specialization string
	)
	if err := row.Scan(
		&tech.ID,
		&tech.Name,
		&tech.Extension,
		&tech.Email,
		&specialization,
		&tech.PasswordHash,
	); err != nil {
		return nil, err
	}
	tech.Specialization = domain.Specialization(specialization)
	return &tech, nil
}
