package scheduler

import (
	"time"

	"github.com/sirupsen/logrus"

	services "github.com/nivkatz/tenants_backend/internal/service"
)

// BackupScheduler uploads a registry snapshot once a day
type BackupScheduler struct {
	backup *services.BackupService
	logger *logrus.Logger
	ticker *time.Ticker
}

// NewBackupScheduler creates a scheduler around the backup service
func NewBackupScheduler(backup *services.BackupService, logger *logrus.Logger) *BackupScheduler {
	return &BackupScheduler{
		backup: backup,
		logger: logger,
	}
}

// Start runs one backup immediately, then schedules a run every night at 03:00
func (s *BackupScheduler) Start() {
	s.logger.Info("Backup scheduler started, running every 24 hours")

	s.RunBackup()

	now := time.Now()
	nextRun := time.Date(now.Year(), now.Month(), now.Day()+1, 3, 0, 0, 0, now.Location())
	s.logger.Infof("Next backup scheduled for %s", nextRun.Format("2006-01-02 15:04:05"))

	time.AfterFunc(time.Until(nextRun), func() {
		s.RunBackup()

		s.ticker = time.NewTicker(24 * time.Hour)
		go func() {
			for range s.ticker.C {
				s.RunBackup()
			}
		}()
	})
}

// Stop stops the scheduler
func (s *BackupScheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.logger.Info("Backup scheduler stopped")
	}
}

// RunBackup performs a single snapshot upload
func (s *BackupScheduler) RunBackup() {
	key, err := s.backup.Run()
	if err != nil {
		s.logger.WithError(err).Error("Registry backup failed")
		return
	}
	s.logger.WithField("key", key).Info("Registry backup uploaded")
}
