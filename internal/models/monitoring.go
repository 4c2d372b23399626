package models

import (
	"time"
)

// SystemStats holds per-day job counts for observability endpoints.
type SystemStats struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Date          time.Time `gorm:"uniqueIndex;not null" json:"date"`
	TotalJobs     int       `gorm:"default:0" json:"total_jobs"`
	PostedJobs    int       `gorm:"default:0" json:"posted_jobs"`
	FailedJobs    int       `gorm:"default:0" json:"failed_jobs"`
	PendingJobs   int       `gorm:"default:0" json:"pending_jobs"`
	TotalAccounts int       `gorm:"default:0" json:"total_accounts"`
	TotalTrends   int       `gorm:"default:0" json:"total_trends"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ErrorLog records one operational error for later inspection.
type ErrorLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Level        string    `gorm:"size:20;not null;index" json:"level"`
	Source       string    `gorm:"size:100;not null;index" json:"source"`
	PlatformName string    `gorm:"size:100;index" json:"platform_name"`
	JobID        *string   `gorm:"size:36;index" json:"job_id"`
	Title        string    `gorm:"size:500;not null" json:"title"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	Context      string    `gorm:"type:jsonb" json:"context"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	Job *ScheduledJob `gorm:"foreignKey:JobID" json:"job,omitempty"`
}
