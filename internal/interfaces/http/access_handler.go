package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nivkatz/tenants_backend/internal/application"
)

// AccessHandler serves the committee's access-list exports: the WhatsApp
// group contacts and the PalGate gate authorizations.
type AccessHandler struct {
	occupancy *application.OccupancyService
}

// NewAccessHandler creates the access-list handler
func NewAccessHandler(occupancy *application.OccupancyService) *AccessHandler {
	return &AccessHandler{occupancy: occupancy}
}

// WhatsAppContacts returns the WhatsApp phone list, optionally per building
func (h *AccessHandler) WhatsAppContacts(c *fiber.Ctx) error {
	building, err := buildingFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	contacts, err := h.occupancy.WhatsAppContacts(building)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"contacts": contacts})
}

// GateAccessList returns the PalGate authorizations, optionally per building
func (h *AccessHandler) GateAccessList(c *fiber.Ctx) error {
	building, err := buildingFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	access, err := h.occupancy.GateAccessList(building)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"access": access})
}

func buildingFilter(c *fiber.Ctx) (int, error) {
	raw := c.Query("building")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid building filter")
	}
	return n, nil
}
