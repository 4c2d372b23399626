package models

import (
	"time"
)

// ContentArtifact is one piece of generated content ready to publish.
// Artifacts are immutable once created.
type ContentArtifact struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Topic     string    `gorm:"size:500" json:"topic"`
	Platform  string    `gorm:"size:50;index" json:"platform"`
	Content   string    `gorm:"not null;type:text" json:"content"`
	ImageURL  string    `gorm:"size:2000" json:"image_url"`
	Hashtags  string    `gorm:"size:1000" json:"hashtags"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
