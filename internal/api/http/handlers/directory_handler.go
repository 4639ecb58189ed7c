package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk-service/internal/api/dto"
	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/service"
)

// DirectoryHandler serves the static catalogs: departments and technicians.
type DirectoryHandler struct {
	technicians *service.TechnicianService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(technicians *service.TechnicianService) *DirectoryHandler {
	return &DirectoryHandler{technicians: technicians}
}

// Departments GET /departments.
func (h *DirectoryHandler) Departments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.Departments})
}

// ListTechnicians GET /technicians.
func (h *DirectoryHandler) ListTechnicians(c *fiber.Ctx) error {
	technicians, err := h.technicians.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(technicians))
	for i := range technicians {
		items = append(items, dto.NewTechnicianResponse(&technicians[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTechnician GET /technicians/:id.
func (h *DirectoryHandler) GetTechnician(c *fiber.Ctx) error {
	tech, err := h.technicians.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTechnicianResponse(tech)})
}
