package models

import (
	"time"
)

// Trend is one discovered trending topic.
type Trend struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Title        string    `gorm:"not null;size:500;index:idx_trends_title_region_day,unique" json:"title"`
	Region       string    `gorm:"not null;size:10;index:idx_trends_title_region_day,unique" json:"region"`
	Day          string    `gorm:"not null;size:10;index:idx_trends_title_region_day,unique" json:"day"`
	Language     string    `gorm:"size:10" json:"language"`
	Category     string    `gorm:"size:100" json:"category"`
	Traffic      string    `gorm:"size:50" json:"traffic"`
	SourceURL    string    `gorm:"size:2000" json:"source_url"`
	DiscoveredAt time.Time `gorm:"not null;index" json:"discovered_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
