package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nivkatz/tenants_backend/internal/domain"
	"github.com/nivkatz/tenants_backend/internal/metrics"
)

// respondError translates engine errors into HTTP responses. Validation
// failures carry the field list so the UI can attach messages to inputs;
// confirmation conflicts are handled by the create handler directly.
func respondError(c *fiber.Ctx, err error) error {
	if fieldErrors, ok := domain.AsValidationError(err); ok {
		metrics.ValidationFailures.Inc()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": fieldErrors,
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no current tenant for this apartment",
		})
	case errors.Is(err, domain.ErrInvalidDate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "invalid date",
			"detail": err.Error(),
		})
	case errors.Is(err, domain.ErrUnavailable):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "registry busy, retry shortly",
		})
	case errors.Is(err, domain.ErrCorrupted):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "stored data is corrupted",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}
}

// apartmentParams parses the :building/:apartment path parameters
func apartmentParams(c *fiber.Ctx) (int, int, error) {
	building, err := strconv.Atoi(c.Params("building"))
	if err != nil {
		return 0, 0, errors.New("invalid building number")
	}
	apartment, err := strconv.Atoi(c.Params("apartment"))
	if err != nil {
		return 0, 0, errors.New("invalid apartment number")
	}
	return building, apartment, nil
}

// parseDate parses a YYYY-MM-DD value
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
