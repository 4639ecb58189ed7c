package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk-service/internal/api/dto"
	"github.com/opsdesk/helpdesk-service/internal/auth"
	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/lifecycle"
	"github.com/opsdesk/helpdesk-service/internal/notify"
	"github.com/opsdesk/helpdesk-service/internal/service"
	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler serves the ticket endpoints.
type TicketsHandler struct {
	service    *service.TicketService
	validate   *validator.Validate
	notifyWait time.Duration
}

// NewTicketsHandler constructs handler. notifyWait bounds how long a response waits for
// the notification outcome before reporting it as pending.
func NewTicketsHandler(ticketService *service.TicketService, v *validator.Validate, notifyWait time.Duration) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validate: v, notifyWait: notifyWait}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	outcome, err := h.service.CreateTicket(c.UserContext(), lifecycle.NewTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  domain.Department(req.Department),
		Contact:     req.Contact,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h.envelope(c.UserContext(), outcome))
}

// ListTickets GET /tickets?q=&status=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext(), service.TicketFilter{
		Query:  c.Query("q"),
		Status: domain.TicketStatus(c.Query("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// Board GET /tickets/board?q=.
func (h *TicketsHandler) Board(c *fiber.Ctx) error {
	columns, err := h.service.Board(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBoard(columns)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Transition POST /tickets/:id/transitions.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("technician session required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}

	outcome, err := h.service.Transition(c.UserContext(), service.TransitionInput{
		TicketID: c.Params("id"),
		Target:   domain.TicketStatus(req.Status),
		Payload: lifecycle.Payload{
			TechnicianID:      req.TechnicianID,
			Reason:            req.Reason,
			EscalationDetails: req.EscalationDetails,
			ResolutionDetails: req.ResolutionDetails,
		},
		ActorID: principal.Session.TechnicianID,
	})
	if err != nil {
		return err
	}
	return c.JSON(h.envelope(c.UserContext(), outcome))
}

func (h *TicketsHandler) envelope(ctx context.Context, outcome *service.TicketOutcome) dto.TicketEnvelope {
	return dto.TicketEnvelope{
		Data:         dto.NewTicketResponse(outcome.Ticket),
		Notification: h.report(ctx, outcome.Delivery),
	}
}

// report waits briefly for the delivery. The ticket is already committed, so any
// notification problem is only a warning.
func (h *TicketsHandler) report(ctx context.Context, delivery *notify.Delivery) *dto.NotificationReport {
	if delivery == nil {
		return nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, h.notifyWait)
	defer cancel()

	outcome, err := delivery.Wait(waitCtx)
	if err != nil {
		report := &dto.NotificationReport{Status: "pending"}
		if !errors.Is(err, context.DeadlineExceeded) {
			report.Warning = err.Error()
		}
		return report
	}
	report := &dto.NotificationReport{
		Kind:      outcome.Kind,
		Status:    outcome.Result(),
		Recipient: outcome.Recipient,
	}
	switch {
	case outcome.Skipped:
		report.Warning = "no deliverable recipient; notification skipped"
	case outcome.Err != nil:
		report.Warning = outcome.Err.Error()
	}
	return report
}
