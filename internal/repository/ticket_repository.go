package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk-service/internal/domain"
)

// ErrNotFound is returned by every repository when a lookup misses.
var ErrNotFound = errors.New("record not found")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	Update(ctx context.Context, id string, patch domain.TicketPatch) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, department, contact, status, assigned_to,
               resolution_details, escalation_details, activity_log, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) (string, error) {
	const query = `
        INSERT INTO tickets (id, title, description, department, contact, status, assigned_to,
            resolution_details, escalation_details, activity_log, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	id := uuid.NewString()
	log := ticket.ActivityLog
	if log == nil {
		log = []string{}
	}
	if _, err := r.pool.Exec(ctx, query,
		id,
		ticket.Title,
		ticket.Description,
		string(ticket.Department),
		ticket.Contact,
		string(ticket.Status),
		ticket.AssignedTo,
		ticket.ResolutionDetails,
		ticket.EscalationDetails,
		log,
		ticket.Timestamp,
	); err != nil {
		return "", err
	}
	ticket.ID = id
	return id, nil
}

// Update applies the patch in one statement. The log is appended server-side so two
// racing writers both keep their entries while the last write decides the status.
func (r *ticketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	const query = `
        UPDATE tickets SET
            status = COALESCE($2, status),
            assigned_to = COALESCE($3, assigned_to),
            resolution_details = COALESCE($4, resolution_details),
            escalation_details = COALESCE($5, escalation_details),
            activity_log = activity_log || $6::text[],
            updated_at = COALESCE($7, updated_at)
        WHERE id=$1`
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	appendLog := patch.AppendLog
	if appendLog == nil {
		appendLog = []string{}
	}
	cmd, err := r.pool.Exec(ctx, query,
		id,
		status,
		patch.AssignedTo,
		patch.ResolutionDetails,
		patch.EscalationDetails,
		appendLog,
		patch.Timestamp,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket     domain.Ticket
		department string
		status     string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&department,
		&ticket.Contact,
		&status,
		&ticket.AssignedTo,
		&ticket.ResolutionDetails,
		&ticket.EscalationDetails,
		&ticket.ActivityLog,
		&ticket.Timestamp,
	); err != nil {
		return nil, err
	}
	ticket.Department = domain.Department(department)
	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}
