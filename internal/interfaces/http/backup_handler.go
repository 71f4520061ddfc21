package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	services "github.com/nivkatz/tenants_backend/internal/service"
)

type BackupHandler struct {
	backup *services.BackupService
	logger *logrus.Logger
}

// NewBackupHandler creates the on-demand backup handler
func NewBackupHandler(backup *services.BackupService, logger *logrus.Logger) *BackupHandler {
	return &BackupHandler{backup: backup, logger: logger}
}

// TriggerBackup uploads a registry snapshot immediately
func (h *BackupHandler) TriggerBackup(c *fiber.Ctx) error {
	if h.backup == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "backups are not configured",
		})
	}

	key, err := h.backup.Run()
	if err != nil {
		h.logger.WithError(err).Error("On-demand backup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "backup failed",
		})
	}
	return c.JSON(fiber.Map{"key": key})
}
