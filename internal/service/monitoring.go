package service

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tidecast/tidecast/internal/models"
)

type MonitoringService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewMonitoringService(db *gorm.DB, logger *zap.Logger) *MonitoringService {
	return &MonitoringService{
		db:     db,
		logger: logger,
	}
}

// RecordError persists an operational error for later inspection.
func (m *MonitoringService) RecordError(level, source, title, message string, options ...ErrorLogOption) error {
	errorLog := &models.ErrorLog{
		Level:   level,
		Source:  source,
		Title:   title,
		Message: message,
	}

	for _, option := range options {
		option(errorLog)
	}

	if err := m.db.Create(errorLog).Error; err != nil {
		m.logger.Error("Failed to record error log", zap.Error(err))
		return err
	}
	return nil
}

type ErrorLogOption func(*models.ErrorLog)

func WithPlatform(platformName string) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.PlatformName = platformName
	}
}

func WithJob(jobID string) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.JobID = &jobID
	}
}

func WithContext(context map[string]interface{}) ErrorLogOption {
	return func(e *models.ErrorLog) {
		if contextBytes, err := json.Marshal(context); err == nil {
			e.Context = string(contextBytes)
		}
	}
}

// UpdateSystemStats refreshes the per-day job counters.
func (m *MonitoringService) UpdateSystemStats() error {
	today := time.Now().Truncate(24 * time.Hour)

	var totalJobs, postedJobs, failedJobs, pendingJobs int64
	m.db.Model(&models.ScheduledJob{}).Count(&totalJobs)
	m.db.Model(&models.ScheduledJob{}).Where("status = ?", models.JobStatusPosted).Count(&postedJobs)
	m.db.Model(&models.ScheduledJob{}).Where("status = ?", models.JobStatusFailed).Count(&failedJobs)
	m.db.Model(&models.ScheduledJob{}).Where("status = ?", models.JobStatusPending).Count(&pendingJobs)

	var totalAccounts, totalTrends int64
	m.db.Model(&models.PlatformAccount{}).Count(&totalAccounts)
	m.db.Model(&models.Trend{}).Count(&totalTrends)

	var stats models.SystemStats
	result := m.db.Where("date = ?", today).First(&stats)

	if result.Error == gorm.ErrRecordNotFound {
		stats = models.SystemStats{
			Date:          today,
			TotalJobs:     int(totalJobs),
			PostedJobs:    int(postedJobs),
			FailedJobs:    int(failedJobs),
			PendingJobs:   int(pendingJobs),
			TotalAccounts: int(totalAccounts),
			TotalTrends:   int(totalTrends),
		}
		return m.db.Create(&stats).Error
	}

	return m.db.Model(&stats).Updates(map[string]interface{}{
		"total_jobs":     totalJobs,
		"posted_jobs":    postedJobs,
		"failed_jobs":    failedJobs,
		"pending_jobs":   pendingJobs,
		"total_accounts": totalAccounts,
		"total_trends":   totalTrends,
	}).Error
}

// CleanupOldErrors removes error logs older than the retention window.
func (m *MonitoringService) CleanupOldErrors(days int) error {
	cutoff := time.Now().AddDate(0, 0, -days)
	return m.db.Where("created_at < ?", cutoff).Delete(&models.ErrorLog{}).Error
}
