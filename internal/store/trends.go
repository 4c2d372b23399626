package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tidecast/tidecast/internal/models"
)

// UpsertTrend inserts a discovered trend, refreshing the traffic figures when
// the same topic is seen again for the same region and day.
func (s *Store) UpsertTrend(ctx context.Context, trend *models.Trend) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "title"}, {Name: "region"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"traffic", "source_url", "discovered_at", "updated_at",
			}),
		}).
		Create(trend).Error
	if err != nil {
		return fmt.Errorf("failed to upsert trend: %w", err)
	}
	return nil
}

func (s *Store) GetTrend(ctx context.Context, id string) (*models.Trend, error) {
	var trend models.Trend
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&trend).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrendNotFound
		}
		return nil, fmt.Errorf("failed to get trend: %w", err)
	}
	return &trend, nil
}

func (s *Store) ListTrends(ctx context.Context, limit int) ([]models.Trend, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	var trends []models.Trend
	err := s.db.WithContext(ctx).
		Order("discovered_at DESC").
		Limit(limit).
		Find(&trends).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trends: %w", err)
	}
	return trends, nil
}
