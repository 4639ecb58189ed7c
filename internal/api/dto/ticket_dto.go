package dto

import (
	"time"

	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/notify"
	"github.com/opsdesk/helpdesk-service/internal/service"
)

// CreateTicketRequest payload. Field checks live in the lifecycle engine.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Department  string `json:"department"`
	Contact     string `json:"contact"`
}

// TransitionRequest payload. The acting technician comes from the session.
type TransitionRequest struct {
	Status            string `json:"status" validate:"required"`
	TechnicianID      string `json:"technicianId"`
	Reason            string `json:"reason"`
	EscalationDetails string `json:"escalationDetails"`
	ResolutionDetails string `json:"resolutionDetails"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Department        domain.Department   `json:"department"`
	Contact           string              `json:"contact"`
	Status            domain.TicketStatus `json:"status"`
	AssignedTo        string              `json:"assignedTo,omitempty"`
	ResolutionDetails string              `json:"resolutionDetails,omitempty"`
	EscalationDetails string              `json:"escalationDetails,omitempty"`
	ActivityLog       []string            `json:"activityLog"`
	Timestamp         time.Time           `json:"timestamp"`
}

// NotificationReport tells the caller what happened to the email a change triggered.
// Status is sent, skipped, failed or pending.
type NotificationReport struct {
	Kind      notify.Kind `json:"kind"`
	Status    string      `json:"status"`
	Recipient string      `json:"recipient,omitempty"`
	Warning   string      `json:"warning,omitempty"`
}

// TicketEnvelope wraps a committed ticket and its notification report.
type TicketEnvelope struct {
	Data         TicketResponse      `json:"data"`
	Notification *NotificationReport `json:"notification,omitempty"`
}

// BoardColumnResponse is one status column of the board.
type BoardColumnResponse struct {
	Status  domain.TicketStatus `json:"status"`
	Count   int                 `json:"count"`
	Tickets []TicketResponse    `json:"tickets"`
}

// NewTicketResponse maps a domain ticket to its wire shape.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	log := t.ActivityLog
	if log == nil {
		log = []string{}
	}
	return TicketResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Department:        t.Department,
		Contact:           t.Contact,
		Status:            t.Status,
		AssignedTo:        t.AssignedTo,
		ResolutionDetails: t.ResolutionDetails,
		EscalationDetails: t.EscalationDetails,
		ActivityLog:       log,
		Timestamp:         t.Timestamp,
	}
}

// NewTicketList maps a slice of tickets.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewBoard maps board columns.
func NewBoard(columns []service.BoardColumn) []BoardColumnResponse {
	out := make([]BoardColumnResponse, 0, len(columns))
	for _, col := range columns {
		out = append(out, BoardColumnResponse{
			Status:  col.Status,
			Count:   len(col.Tickets),
			Tickets: NewTicketList(col.Tickets),
		})
	}
	return out
}
