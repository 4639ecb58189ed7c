package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk-service/internal/identity"
)

// ContactRepository stores the submitter extension directory.
type ContactRepository interface {
	Table(ctx context.Context) (identity.Table, error)
	Put(ctx context.Context, extension, email string) error
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository builds repository.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Put(ctx context.Context, extension, email string) error {
	const query = `
        INSERT INTO contacts (extension, email) VALUES ($1,$2)
        ON CONFLICT (extension) DO UPDATE SET email=EXCLUDED.email`
	_, err := r.pool.Exec(ctx, query, extension, email)
	return err
}

func (r *contactRepository) Table(ctx context.Context) (identity.Table, error) {
	rows, err := r.pool.Query(ctx, `SELECT extension, email FROM contacts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := identity.Table{}
	for rows.Next() {
		var extension, email string
		if err := rows.Scan(&extension, &email); err != nil {
			return nil, err
		}
		table[extension] = email
	}
	return table, rows.Err()
}
