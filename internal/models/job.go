package models

import (
	"time"
)

// JobStatus is the closed lifecycle enumeration for a scheduled job.
// PENDING is the only non-terminal state; POSTED and FAILED are terminal and
// a job never re-enters PENDING.
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusPosted  JobStatus = "POSTED"
	JobStatusFailed  JobStatus = "FAILED"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusPosted || s == JobStatusFailed
}

// ScheduledJob is one pending or completed publish intent. ContentID takes
// priority over the inline Payload/ImageURL fallback when both are set.
type ScheduledJob struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Platform      string    `gorm:"not null;size:50;index" json:"platform"`
	AccountID     *string   `gorm:"size:36;index" json:"account_id"`
	ContentID     *string   `gorm:"size:36;index" json:"content_id"`
	Payload       string    `gorm:"type:text" json:"payload"`
	ImageURL      string    `gorm:"size:2000" json:"image_url"`
	ScheduledFor  time.Time `gorm:"not null;index" json:"scheduled_for"`
	Status        JobStatus `gorm:"not null;size:20;default:'PENDING';index" json:"status"`
	ResultMessage string    `gorm:"type:text" json:"result_message"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Account *PlatformAccount `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Content *ContentArtifact `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}
