package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketAssigned  EventType = "ticket_assigned"
	EventTicketEscalated EventType = "ticket_escalated"
	EventTicketResolved  EventType = "ticket_resolved"
)

// TicketEventTypes lists every ticket event.
var TicketEventTypes = []EventType{
	EventTicketCreated,
	EventTicketAssigned,
	EventTicketEscalated,
	EventTicketResolved,
}

// TransitionEventType maps a committed target status to its event.
func TransitionEventType(target domain.TicketStatus) EventType {
	switch target {
	case domain.TicketStatusAssigned:
		return EventTicketAssigned
	case domain.TicketStatusEscalated:
		return EventTicketEscalated
	case domain.TicketStatusResolved:
		return EventTicketResolved
	default:
		return EventTicketCreated
	}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	TicketID  string       `json:"ticketId"`
	ActorID   string       `json:"actorId,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   StatusChange `json:"payload"`
}

// StatusChange describes the board-visible part of a ticket change.
type StatusChange struct {
	From       domain.TicketStatus `json:"from,omitempty"`
	To         domain.TicketStatus `json:"to"`
	AssignedTo string              `json:"assignedTo,omitempty"`
	Entry      string              `json:"entry"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, ticketID, actorID string, at time.Time, change StatusChange) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: at,
		Payload:   change,
	}
}
