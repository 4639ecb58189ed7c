package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "Pending"
	TicketStatusAssigned  TicketStatus = "Assigned"
	TicketStatusEscalated TicketStatus = "Escalated"
	TicketStatusResolved  TicketStatus = "Resolved"
)

// TicketStatuses lists every status in board order.
var TicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusAssigned,
	TicketStatusEscalated,
	TicketStatusResolved,
}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                string
	Title             string
	Description       string
	Department        Department
	Contact           string
	Status            TicketStatus
	AssignedTo        string
	ResolutionDetails string
	EscalationDetails string
	ActivityLog       []string
	Timestamp         time.Time
}

// Clone returns a deep copy so callers can mutate without aliasing the log.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	cp.ActivityLog = append([]string(nil), t.ActivityLog...)
	return &cp
}

// TicketPatch is a partial update. Nil fields are left untouched and
// AppendLog entries are added after the existing log.
type TicketPatch struct {
	Status            *TicketStatus
	AssignedTo        *string
	ResolutionDetails *string
	EscalationDetails *string
	AppendLog         []string
	Timestamp         *time.Time
}

// Apply merges the patch into ticket in place.
func (p TicketPatch) Apply(ticket *Ticket) {
	if p.Status != nil {
		ticket.Status = *p.Status
	}
	if p.AssignedTo != nil {
		ticket.AssignedTo = *p.AssignedTo
	}
	if p.ResolutionDetails != nil {
		ticket.ResolutionDetails = *p.ResolutionDetails
	}
	if p.EscalationDetails != nil {
		ticket.EscalationDetails = *p.EscalationDetails
	}
	if len(p.AppendLog) > 0 {
		ticket.ActivityLog = append(ticket.ActivityLog, p.AppendLog...)
	}
	if p.Timestamp != nil {
		ticket.Timestamp = *p.Timestamp
	}
}
