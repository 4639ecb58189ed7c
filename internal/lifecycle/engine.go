// Package lifecycle implements the ticket state machine: which transitions are legal,
// what each one writes and which notification it calls for.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsdesk/helpdesk-service/internal/domain"
	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// TimeLayout formats instants inside activity log entries.
const TimeLayout = "2006-01-02 15:04:05"

// Notification names the side effect a committed transition asks for.
type Notification string

const (
	NotifyNone     Notification = ""
	NotifyAssigned Notification = "assigned"
	NotifyResolved Notification = "resolved"
)

// Payload carries the transition inputs; which fields are required depends on the target.
type Payload struct {
	TechnicianID      string
	Reason            string
	EscalationDetails string
	ResolutionDetails string
}

// Roster is a snapshot of the technician registry keyed by id.
type Roster map[string]domain.Technician

// NewRoster indexes technicians by id.
func NewRoster(technicians []domain.Technician) Roster {
	roster := make(Roster, len(technicians))
	for _, tech := range technicians {
		roster[tech.ID] = tech
	}
	return roster
}

// Find returns the technician with id, or nil.
func (r Roster) Find(id string) *domain.Technician {
	tech, ok := r[id]
	if !ok {
		return nil
	}
	return &tech
}

// Result is a validated transition that has not been persisted yet.
type Result struct {
	Ticket     *domain.Ticket
	Patch      domain.TicketPatch
	Entry      string
	From       domain.TicketStatus
	Notify     Notification
	Technician *domain.Technician
}

// NewTicketInput describes a ticket submission.
type NewTicketInput struct {
	Title       string
	Description string
	Department  domain.Department
	Contact     string
}

// Engine applies transitions. It holds no ticket state.
type Engine struct {
	nowFn    func() time.Time
	location *time.Location
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.nowFn = now
		}
	}
}

// WithLocation sets the zone used to render log timestamps.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewEngine builds an engine using the wall clock in UTC unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{nowFn: time.Now, location: time.UTC}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open validates a submission and returns a Pending ticket with its creation entry.
func (e *Engine) Open(input NewTicketInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	contact := strings.TrimSpace(input.Contact)
	switch {
	case title == "":
		return nil, apperrors.NewMissingField("title")
	case description == "":
		return nil, apperrors.NewMissingField("description")
	case input.Department == "":
		return nil, apperrors.NewMissingField("department")
	case contact == "":
		return nil, apperrors.NewMissingField("contact")
	}
	if !input.Department.Valid() {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{
			"department": input.Department,
			"allowed":    domain.Departments,
		})
	}

	now := e.now()
	return &domain.Ticket{
		Title:       title,
		Description: description,
		Department:  input.Department,
		Contact:     contact,
		Status:      domain.TicketStatusPending,
		ActivityLog: []string{fmt.Sprintf("Ticket created at %s", e.stamp(now))},
		Timestamp:   now,
	}, nil
}

// Apply validates moving ticket to target on behalf of actorID. On error nothing about
// ticket has changed; on success the returned Result holds the next state and the patch
// that produces it.
func (e *Engine) Apply(ticket *domain.Ticket, target domain.TicketStatus, payload Payload, actorID string, roster Roster) (*Result, error) {
	if ticket == nil {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	if !target.Valid() || !Reachable(ticket.Status, target) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(target))
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, apperrors.NewMissingField("actorId")
	}

	now := e.now()
	stamp := e.stamp(now)
	result := &Result{From: ticket.Status}
	patch := domain.TicketPatch{}

	switch target {
	case domain.TicketStatusAssigned:
		techID := strings.TrimSpace(payload.TechnicianID)
		if techID == "" {
			return nil, apperrors.NewMissingField("technicianId")
		}
		if err := e.authorize(ticket, target, actorID); err != nil {
			return nil, err
		}
		tech := roster.Find(techID)
		if tech == nil {
			return nil, apperrors.NewUnknownTechnician(techID)
		}
		entry := fmt.Sprintf("Assigned to %s (%s) at %s", domain.DisplayName(tech, techID), techID, stamp)
		if reason := strings.TrimSpace(payload.Reason); reason != "" {
			entry += fmt.Sprintf(" (Reason: %s)", reason)
		}
		patch.AssignedTo = &techID
		result.Entry = entry
		result.Notify = NotifyAssigned
		result.Technician = tech
	case domain.TicketStatusEscalated:
		details := strings.TrimSpace(payload.EscalationDetails)
		if details == "" {
			return nil, apperrors.NewMissingField("escalationDetails")
		}
		if err := e.authorize(ticket, target, actorID); err != nil {
			return nil, err
		}
		patch.EscalationDetails = &details
		result.Entry = fmt.Sprintf("Escalated by %s at %s: %s", domain.DisplayName(roster.Find(actorID), actorID), stamp, details)
	case domain.TicketStatusResolved:
		details := strings.TrimSpace(payload.ResolutionDetails)
		if details == "" {
			return nil, apperrors.NewMissingField("resolutionDetails")
		}
		if err := e.authorize(ticket, target, actorID); err != nil {
			return nil, err
		}
		patch.ResolutionDetails = &details
		result.Entry = fmt.Sprintf("Resolved by %s at %s: %s", domain.DisplayName(roster.Find(actorID), actorID), stamp, details)
		result.Notify = NotifyResolved
	default:
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(target))
	}

	status := target
	patch.Status = &status
	patch.Timestamp = &now
	patch.AppendLog = []string{result.Entry}

	next := ticket.Clone()
	patch.Apply(next)
	result.Ticket = next
	result.Patch = patch
	return result, nil
}

func (e *Engine) authorize(ticket *domain.Ticket, target domain.TicketStatus, actorID string) error {
	if Permitted(ticket, target, actorID) {
		return nil
	}
	return apperrors.NewTransitionForbidden("technician may not perform this transition", map[string]any{
		"status":      ticket.Status,
		"target":      target,
		"assigned_to": ticket.AssignedTo,
		"actor_id":    actorID,
	})
}

func (e *Engine) now() time.Time {
	return e.nowFn().In(e.location)
}

func (e *Engine) stamp(t time.Time) string {
	return t.In(e.location).Format(TimeLayout)
}
