package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nivkatz/tenants_backend/internal/application"
	"github.com/nivkatz/tenants_backend/internal/domain"
)

type BuildingHandler struct {
	catalog   *domain.Catalog
	occupancy *application.OccupancyService
}

// NewBuildingHandler creates the building catalog handler
func NewBuildingHandler(catalog *domain.Catalog, occupancy *application.OccupancyService) *BuildingHandler {
	return &BuildingHandler{catalog: catalog, occupancy: occupancy}
}

// ListBuildings returns all buildings with their occupancy statistics
func (h *BuildingHandler) ListBuildings(c *fiber.Ctx) error {
	summaries, err := h.occupancy.AllBuildingsOccupancy()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"buildings": summaries})
}

// GetBuilding returns one building's occupancy statistics
func (h *BuildingHandler) GetBuilding(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid building number"})
	}

	summary, err := h.occupancy.BuildingOccupancy(number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
