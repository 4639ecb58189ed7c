// Package mailer renders helpdesk emails and sends them over SMTP.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk-service/internal/config"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SMTPSender sends through an SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender builds a sender from SMTP settings.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(s.cfg.TLSPolicy)),
		mail.WithTimeout(15 * time.Second),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch strings.ToLower(name) {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

// Mailer renders and sends the three helpdesk emails, retrying a failed send up to
// maxRetries times.
type Mailer struct {
	sender     Sender
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// New builds a Mailer.
func New(sender Sender, maxRetries int, logger *zap.Logger) *Mailer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{sender: sender, maxRetries: maxRetries, backoff: 500 * time.Millisecond, logger: logger}
}

// SendConfirmation emails the submitter that a ticket was created.
func (m *Mailer) SendConfirmation(ctx context.Context, to string, data ConfirmationData) error {
	email, err := ConfirmationEmail(to, data)
	if err != nil {
		return err
	}
	return m.deliver(ctx, email)
}

// SendAssignment emails the assigned technician.
func (m *Mailer) SendAssignment(ctx context.Context, to string, data AssignmentData) error {
	email, err := AssignmentEmail(to, data)
	if err != nil {
		return err
	}
	return m.deliver(ctx, email)
}

// SendResolution emails the submitter that a ticket was resolved.
func (m *Mailer) SendResolution(ctx context.Context, to string, data ResolutionData) error {
	email, err := ResolutionEmail(to, data)
	if err != nil {
		return err
	}
	return m.deliver(ctx, email)
}

func (m *Mailer) deliver(ctx context.Context, email Email) error {
	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.backoff):
			}
		}
		if err = m.sender.Send(ctx, email); err == nil {
			m.logger.Info("email sent", zap.String("to", email.To), zap.String("subject", email.Subject))
			return nil
		}
		m.logger.Warn("email send failed",
			zap.String("to", email.To),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return err
}
