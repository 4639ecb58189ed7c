package domain

import "time"

// Session identifies the technician acting on the helpdesk.
type Session struct {
	TechnicianID string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
