package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/events"
	"github.com/opsdesk/helpdesk-service/internal/identity"
	"github.com/opsdesk/helpdesk-service/internal/lifecycle"
	"github.com/opsdesk/helpdesk-service/internal/notify"
	"github.com/opsdesk/helpdesk-service/internal/repository"
	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// NotificationDispatcher schedules a notification without waiting for it.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, msg notify.Message) *notify.Delivery
}

// TicketService coordinates ticket workflows: validate, persist, then notify.
type TicketService struct {
	tickets     repository.TicketRepository
	technicians repository.TechnicianRepository
	contacts    repository.ContactRepository
	engine      *lifecycle.Engine
	notifier    NotificationDispatcher
	events      events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	TechnicianRepo repository.TechnicianRepository
	ContactRepo    repository.ContactRepository
	Engine         *lifecycle.Engine
	Notifications  NotificationDispatcher
	Events         events.Dispatcher
	Logger         *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	engine := deps.Engine
	if engine == nil {
		engine = lifecycle.NewEngine()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		technicians: deps.TechnicianRepo,
		contacts:    deps.ContactRepo,
		engine:      engine,
		notifier:    deps.Notifications,
		events:      deps.Events,
		logger:      logger,
	}
}

// TicketOutcome is a committed ticket plus the notification it triggered, if any.
type TicketOutcome struct {
	Ticket   *domain.Ticket
	Delivery *notify.Delivery
}

// TransitionInput asks for a status change on behalf of ActorID.
type TransitionInput struct {
	TicketID string
	Target   domain.TicketStatus
	Payload  lifecycle.Payload
	ActorID  string
}

// TicketFilter narrows ListTickets. Query matches title, description, department and
// contact case-insensitively.
type TicketFilter struct {
	Query  string
	Status domain.TicketStatus
}

// BoardColumn holds the tickets in one status.
type BoardColumn struct {
	Status  domain.TicketStatus
	Tickets []domain.Ticket
}

// CreateTicket validates a submission, stores it as Pending and confirms it to the submitter.
func (s *TicketService) CreateTicket(ctx context.Context, input lifecycle.NewTicketInput) (*TicketOutcome, error) {
	ticket, err := s.engine.Open(input)
	if err != nil {
		return nil, err
	}

	table, err := s.contacts.Table(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	recipient, err := identity.Resolve(table, ticket.Contact)
	if err != nil {
		return nil, apperrors.NewNotResolvable(ticket.Contact)
	}

	if _, err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("department", string(ticket.Department)))

	s.publish(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, "", ticket.Timestamp, events.StatusChange{
		To:    ticket.Status,
		Entry: lastEntry(ticket),
	}))

	delivery := s.dispatch(ctx, notify.Message{
		Kind:        notify.KindCreated,
		TicketID:    ticket.ID,
		Recipient:   recipient,
		Title:       ticket.Title,
		Description: ticket.Description,
	})
	return &TicketOutcome{Ticket: ticket, Delivery: delivery}, nil
}

// GetTicket loads one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err, id)
	}
	return ticket, nil
}

// ListTickets returns tickets in creation order matching filter.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{
			"status":  filter.Status,
			"allowed": domain.TicketStatuses,
		})
	}
	all, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := make([]domain.Ticket, 0, len(all))
	for _, ticket := range all {
		if filter.Status != "" && ticket.Status != filter.Status {
			continue
		}
		if query != "" && !matches(ticket, query) {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

// Board groups tickets matching query by status, newest change first within a column.
func (s *TicketService) Board(ctx context.Context, query string) ([]BoardColumn, error) {
	tickets, err := s.ListTickets(ctx, TicketFilter{Query: query})
	if err != nil {
		return nil, err
	}
	columns := make([]BoardColumn, len(domain.TicketStatuses))
	index := make(map[domain.TicketStatus]int, len(domain.TicketStatuses))
	for i, status := range domain.TicketStatuses {
		columns[i] = BoardColumn{Status: status, Tickets: []domain.Ticket{}}
		index[status] = i
	}
	for _, ticket := range tickets {
		i, ok := index[ticket.Status]
		if !ok {
			continue
		}
		columns[i].Tickets = append(columns[i].Tickets, ticket)
	}
	for i := range columns {
		col := columns[i].Tickets
		sort.SliceStable(col, func(a, b int) bool { return col[a].Timestamp.After(col[b].Timestamp) })
	}
	return columns, nil
}

// Transition applies a lifecycle transition. Once the store update succeeds the change is
// committed; notification runs afterwards and its failure is reported through the Delivery.
func (s *TicketService) Transition(ctx context.Context, input TransitionInput) (*TicketOutcome, error) {
	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, mapTicketErr(err, input.TicketID)
	}
	technicians, err := s.technicians.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	roster := lifecycle.NewRoster(technicians)

	result, err := s.engine.Apply(ticket, input.Target, input.Payload, input.ActorID, roster)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket.ID, result.Patch); err != nil {
		return nil, mapTicketErr(err, ticket.ID)
	}

	committed := result.Ticket
	if stored, err := s.tickets.GetByID(ctx, ticket.ID); err == nil {
		committed = stored
	} else {
		s.logger.Warn("reload after transition failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
	s.logger.Info("ticket transitioned",
		zap.String("ticket_id", ticket.ID),
		zap.String("from", string(result.From)),
		zap.String("to", string(input.Target)),
		zap.String("actor_id", input.ActorID))

	s.publish(ctx, events.NewEvent(events.TransitionEventType(input.Target), ticket.ID, input.ActorID, *result.Patch.Timestamp, events.StatusChange{
		From:       result.From,
		To:         input.Target,
		AssignedTo: committed.AssignedTo,
		Entry:      result.Entry,
	}))

	outcome := &TicketOutcome{Ticket: committed}
	switch result.Notify {
	case lifecycle.NotifyAssigned:
		recipient, _ := identity.Resolve(technicianDirectory(technicians), result.Technician.ID)
		outcome.Delivery = s.dispatch(ctx, notify.Message{
			Kind:        notify.KindAssigned,
			TicketID:    ticket.ID,
			Recipient:   recipient,
			Title:       committed.Title,
			Description: committed.Description,
			Department:  string(committed.Department),
			Contact:     committed.Contact,
		})
	case lifecycle.NotifyResolved:
		outcome.Delivery = s.dispatch(ctx, notify.Message{
			Kind:              notify.KindResolved,
			TicketID:          ticket.ID,
			Recipient:         s.submitterEmail(ctx, committed.Contact),
			Title:             committed.Title,
			ResolutionDetails: committed.ResolutionDetails,
		})
	}
	return outcome, nil
}

// submitterEmail resolves the contact at notification time; failures mean no recipient.
func (s *TicketService) submitterEmail(ctx context.Context, contact string) string {
	table, err := s.contacts.Table(ctx)
	if err != nil {
		s.logger.Warn("contact directory unavailable", zap.Error(err))
		table = nil
	}
	email, err := identity.Resolve(table, contact)
	if err != nil {
		return ""
	}
	return email
}

func (s *TicketService) dispatch(ctx context.Context, msg notify.Message) *notify.Delivery {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.Dispatch(ctx, msg)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

// technicianDirectory maps both technician ids and extensions to their email.
func technicianDirectory(technicians []domain.Technician) identity.Table {
	table := identity.Table{}
	for _, tech := range technicians {
		if tech.Email == "" {
			continue
		}
		if tech.Extension != "" {
			table[tech.Extension] = tech.Email
		}
		table[tech.ID] = tech.Email
	}
	return table
}

func matches(ticket domain.Ticket, query string) bool {
	for _, field := range []string{ticket.Title, ticket.Description, string(ticket.Department), ticket.Contact} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func lastEntry(ticket *domain.Ticket) string {
	if len(ticket.ActivityLog) == 0 {
		return ""
	}
	return ticket.ActivityLog[len(ticket.ActivityLog)-1]
}

func mapTicketErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}
