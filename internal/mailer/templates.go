package mailer

import (
	"bytes"
	"fmt"
	"text/template"
)

// Email is a rendered plain-text message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// ConfirmationData fills the ticket-created email.
type ConfirmationData struct {
	Title       string
	Description string
}

// AssignmentData fills the technician assignment email.
type AssignmentData struct {
	Title       string
	Description string
	Department  string
	Contact     string
}

// ResolutionData fills the ticket-resolved email.
type ResolutionData struct {
	Title             string
	ResolutionDetails string
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(`Hello,

Your support ticket has been created.

Title: {{.Title}}
Description: {{.Description}}

We will get back to you shortly.

Best regards,
Helpdesk Team`))

	assignmentTmpl = template.Must(template.New("assignment").Parse(`Hello,

A support ticket has been assigned to you.

Title: {{.Title}}
Description: {{.Description}}
Department: {{.Department}}
Contact: {{.Contact}}

Please review it on the helpdesk board.

Helpdesk Team`))

	resolutionTmpl = template.Must(template.New("resolution").Parse(`Hello,

Your support ticket has been resolved.

Title: {{.Title}}
Resolution: {{.ResolutionDetails}}

If the problem persists, please submit a new ticket.

Best regards,
Helpdesk Team`))
)

// ConfirmationEmail renders the ticket-created email.
func ConfirmationEmail(to string, data ConfirmationData) (Email, error) {
	return render(to, "Support Ticket Confirmation: "+data.Title, confirmationTmpl, data)
}

// AssignmentEmail renders the assignment email.
func AssignmentEmail(to string, data AssignmentData) (Email, error) {
	return render(to, "Support Ticket Assigned: "+data.Title, assignmentTmpl, data)
}

// ResolutionEmail renders the resolution email.
func ResolutionEmail(to string, data ResolutionData) (Email, error) {
	return render(to, "Support Ticket Resolved: "+data.Title, resolutionTmpl, data)
}

func render(to, subject string, tmpl *template.Template, data any) (Email, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Email{}, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return Email{To: to, Subject: subject, Body: buf.String()}, nil
}
