package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/identity"
)

// MemoryTicketRepository keeps tickets in process. It backs the service when no
// database is configured and in tests.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	order   []string
}

// NewMemoryTicketRepository returns an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) (string, error) {
	id := uuid.NewString()
	stored := ticket.Clone()
	stored.ID = id

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[id] = stored
	r.order = append(r.order, id)
	ticket.ID = id
	return id, nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

func (r *MemoryTicketRepository) ListAll(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.tickets[id].Clone())
	}
	return result, nil
}

func (r *MemoryTicketRepository) Update(_ context.Context, id string, patch domain.TicketPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return ErrNotFound
	}
	patch.Apply(ticket)
	return nil
}

// MemoryTechnicianRepository is a fixed registry held in memory.
type MemoryTechnicianRepository struct {
	mu          sync.RWMutex
	technicians map[string]domain.Technician
}

// NewMemoryTechnicianRepository seeds the registry.
func NewMemoryTechnicianRepository(technicians []domain.Technician) *MemoryTechnicianRepository {
	repo := &MemoryTechnicianRepository{technicians: make(map[string]domain.Technician, len(technicians))}
	for _, tech := range technicians {
		repo.technicians[tech.ID] = tech
	}
	return repo
}

func (r *MemoryTechnicianRepository) ListAll(_ context.Context) ([]domain.Technician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Technician, 0, len(r.technicians))
	for _, tech := range r.technicians {
		result = append(result, tech)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryTechnicianRepository) FindByID(_ context.Context, id string) (*domain.Technician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tech, ok := r.technicians[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tech, nil
}

func (r *MemoryTechnicianRepository) Upsert(_ context.Context, tech *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.technicians[tech.ID]; ok && tech.PasswordHash == "" {
		tech.PasswordHash = existing.PasswordHash
	}
	r.technicians[tech.ID] = *tech
	return nil
}

// MemoryContactRepository holds the submitter directory in memory.
type MemoryContactRepository struct {
	mu    sync.RWMutex
	table identity.Table
}

// NewMemoryContactRepository seeds the directory.
func NewMemoryContactRepository(table identity.Table) *MemoryContactRepository {
	return &MemoryContactRepository{table: identity.Merge(table)}
}

func (r *MemoryContactRepository) Table(_ context.Context) (identity.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return identity.Merge(r.table), nil
}

func (r *MemoryContactRepository) Put(_ context.Context, extension, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[extension] = email
	return nil
}
