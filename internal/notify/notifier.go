// Package notify delivers ticket notifications to the notifier service.
package notify

import (
	"context"
	"fmt"
)

// Kind identifies which notification operation a message maps to.
type Kind string

const (
	KindCreated  Kind = "created"
	KindAssigned Kind = "assigned"
	KindResolved Kind = "resolved"
)

// Notifier sends the three ticket notifications. Implementations return nil on success
// or a DELIVERY_FAILED domain error.
type Notifier interface {
	NotifyTicketCreated(ctx context.Context, email, title, description string) error
	NotifyAssigned(ctx context.Context, email, title, description, department, contact string) error
	NotifyResolved(ctx context.Context, email, title, resolutionDetails string) error
}

// Message is a notification request with its recipient already resolved. An empty
// Recipient means there is nobody to notify.
type Message struct {
	Kind              Kind
	TicketID          string
	Recipient         string
	Title             string
	Description       string
	Department        string
	Contact           string
	ResolutionDetails string
}

// Send routes msg to the matching Notifier operation.
func Send(ctx context.Context, n Notifier, msg Message) error {
	switch msg.Kind {
	case KindCreated:
		return n.NotifyTicketCreated(ctx, msg.Recipient, msg.Title, msg.Description)
	case KindAssigned:
		return n.NotifyAssigned(ctx, msg.Recipient, msg.Title, msg.Description, msg.Department, msg.Contact)
	case KindResolved:
		return n.NotifyResolved(ctx, msg.Recipient, msg.Title, msg.ResolutionDetails)
	default:
		return fmt.Errorf("unknown notification kind %q", msg.Kind)
	}
}
