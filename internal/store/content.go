package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tidecast/tidecast/internal/models"
)

// ContentSpec is the creation input for a content artifact.
type ContentSpec struct {
	Topic    string
	Platform string
	Content  string
	ImageURL string
	Hashtags string
}

func (s *Store) CreateContent(ctx context.Context, spec ContentSpec) (*models.ContentArtifact, error) {
	if strings.TrimSpace(spec.Content) == "" {
		return nil, validationErr("content", "must not be empty")
	}

	artifact := &models.ContentArtifact{
		ID:       uuid.NewString(),
		Topic:    spec.Topic,
		Platform: spec.Platform,
		Content:  spec.Content,
		ImageURL: spec.ImageURL,
		Hashtags: spec.Hashtags,
	}

	if err := s.db.WithContext(ctx).Create(artifact).Error; err != nil {
		return nil, fmt.Errorf("failed to create content artifact: %w", err)
	}

	return artifact, nil
}

func (s *Store) GetContent(ctx context.Context, id string) (*models.ContentArtifact, error) {
	var artifact models.ContentArtifact
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&artifact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content artifact: %w", err)
	}
	return &artifact, nil
}
