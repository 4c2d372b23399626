package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PlatformAccount holds one set of credentials for one platform account.
// The scheduling core reads these, it never writes them.
type PlatformAccount struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Platform     string         `gorm:"not null;size:50;index" json:"platform"`
	AccountName  string         `gorm:"not null;size:200" json:"account_name"`
	AccessToken  string         `gorm:"not null;type:text" json:"-"`
	RefreshToken string         `gorm:"type:text" json:"-"`
	Metadata     string         `gorm:"type:jsonb" json:"-"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// MetadataMap decodes the platform-specific metadata object. A missing or
// malformed object yields an empty map; adapters validate the keys they need.
func (a *PlatformAccount) MetadataMap() map[string]string {
	meta := make(map[string]string)
	if a == nil || a.Metadata == "" {
		return meta
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(a.Metadata), &raw); err != nil {
		return meta
	}

	for k, v := range raw {
		if s, ok := v.(string); ok {
			meta[k] = s
		}
	}
	return meta
}
