package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk-service/internal/mailer"
	"github.com/opsdesk/helpdesk-service/internal/notify"
	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// MailSender is the mailer surface the notifier endpoints use.
type MailSender interface {
	SendConfirmation(ctx context.Context, to string, data mailer.ConfirmationData) error
	SendAssignment(ctx context.Context, to string, data mailer.AssignmentData) error
	SendResolution(ctx context.Context, to string, data mailer.ResolutionData) error
}

// NotifierHandler turns notification requests into emails.
type NotifierHandler struct {
	mail     MailSender
	validate *validator.Validate
}

// NewNotifierHandler constructs handler.
func NewNotifierHandler(mail MailSender, v *validator.Validate) *NotifierHandler {
	return &NotifierHandler{mail: mail, validate: v}
}

// Confirmation POST /api/send-confirmation-email.
func (h *NotifierHandler) Confirmation(c *fiber.Ctx) error {
	var req notify.ConfirmationRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}
	return h.respond(c, h.mail.SendConfirmation(c.UserContext(), req.Email, mailer.ConfirmationData{
		Title:       req.Title,
		Description: req.Description,
	}))
}

// Assignment POST /api/send-assignment-email.
func (h *NotifierHandler) Assignment(c *fiber.Ctx) error {
	var req notify.AssignmentRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}
	return h.respond(c, h.mail.SendAssignment(c.UserContext(), req.Email, mailer.AssignmentData{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Contact:     req.Contact,
	}))
}

// Resolution POST /api/send-resolution-email.
func (h *NotifierHandler) Resolution(c *fiber.Ctx) error {
	var req notify.ResolutionRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}
	return h.respond(c, h.mail.SendResolution(c.UserContext(), req.Email, mailer.ResolutionData{
		Title:             req.Title,
		ResolutionDetails: req.ResolutionDetails,
	}))
}

func (h *NotifierHandler) parse(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return validate(h.validate, req)
}

func (h *NotifierHandler) respond(c *fiber.Ctx, err error) error {
	if err != nil {
		return apperrors.NewDeliveryError(err)
	}
	return c.JSON(fiber.Map{"message": "Email sent successfully"})
}
