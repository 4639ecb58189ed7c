package lifecycle

import "github.com/opsdesk/helpdesk-service/internal/domain"

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPending:   {domain.TicketStatusAssigned, domain.TicketStatusEscalated},
	domain.TicketStatusAssigned:  {domain.TicketStatusAssigned, domain.TicketStatusEscalated, domain.TicketStatusResolved},
	domain.TicketStatusEscalated: {domain.TicketStatusResolved},
	domain.TicketStatusResolved:  {},
}

// Reachable reports whether next is a legal target from current.
func Reachable(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Targets lists the statuses reachable from current.
func Targets(current domain.TicketStatus) []domain.TicketStatus {
	return append([]domain.TicketStatus(nil), allowedTransitions[current]...)
}

// Permitted decides whether actorID may move ticket to target.
//
// Once a ticket is Assigned, only the current assignee may reassign it (or anyone while it
// has no assignee), and escalation is the hand-off path for everyone except the assignee.
// Every other reachable transition is open to any technician.
func Permitted(ticket *domain.Ticket, target domain.TicketStatus, actorID string) bool {
	if ticket.Status != domain.TicketStatusAssigned {
		return true
	}
	switch target {
	case domain.TicketStatusAssigned:
		return ticket.AssignedTo == "" || ticket.AssignedTo == actorID
	case domain.TicketStatusEscalated:
		return ticket.AssignedTo != actorID
	default:
		return true
	}
}
