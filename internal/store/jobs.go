package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tidecast/tidecast/internal/models"
)

// DefaultListLimit caps the observability listing when the caller supplies no
// limit of its own.
const DefaultListLimit = 100

// JobSpec is the creation input for a scheduled job. Exactly one content
// source must be supplied: a content artifact id, or an inline payload.
type JobSpec struct {
	Platform     string
	AccountID    *string
	ContentID    *string
	Payload      string
	ImageURL     string
	ScheduledFor time.Time
}

// CreateJob validates the spec, assigns an id and persists the job in the
// PENDING state.
func (s *Store) CreateJob(ctx context.Context, spec JobSpec) (*models.ScheduledJob, error) {
	if strings.TrimSpace(spec.Platform) == "" {
		return nil, validationErr("platform", "must not be empty")
	}
	if spec.ScheduledFor.IsZero() {
		return nil, validationErr("scheduledFor", "must be a valid timestamp")
	}

	// An empty-string content id counts as absent.
	contentID := spec.ContentID
	if contentID != nil && strings.TrimSpace(*contentID) == "" {
		contentID = nil
	}
	accountID := spec.AccountID
	if accountID != nil && strings.TrimSpace(*accountID) == "" {
		accountID = nil
	}

	if contentID == nil && strings.TrimSpace(spec.Payload) == "" {
		return nil, validationErr("content", "either a content id or an inline payload is required")
	}

	job := &models.ScheduledJob{
		ID:           uuid.NewString(),
		Platform:     strings.TrimSpace(spec.Platform),
		AccountID:    accountID,
		ContentID:    contentID,
		Payload:      spec.Payload,
		ImageURL:     spec.ImageURL,
		ScheduledFor: spec.ScheduledFor,
		Status:       models.JobStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create scheduled job: %w", err)
	}

	return job, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*models.ScheduledJob, error) {
	var job models.ScheduledJob
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get scheduled job: %w", err)
	}
	return &job, nil
}

// ListDueJobs returns every PENDING job whose scheduled time is at or before
// now, oldest-due first. The ordering is a fairness guarantee: a job that has
// been waiting longest is dispatched first.
func (s *Store) ListDueJobs(ctx context.Context, now time.Time) ([]models.ScheduledJob, error) {
	var jobs []models.ScheduledJob
	err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", models.JobStatusPending, now).
		Order("scheduled_for ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due jobs: %w", err)
	}
	return jobs, nil
}

// ListRecentJobs returns jobs newest-scheduled first with their account and
// content joined for display, capped at limit.
func (s *Store) ListRecentJobs(ctx context.Context, limit int) ([]models.ScheduledJob, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	var jobs []models.ScheduledJob
	err := s.db.WithContext(ctx).
		Preload("Account").
		Preload("Content").
		Order("scheduled_for DESC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJobResult transitions a PENDING job to a terminal status, setting the
// status and result message atomically. The transition is guarded by a
// conditional update so only one attempt can ever commit a result: a write
// against an already-terminal job returns ErrInvalidTransition.
func (s *Store) UpdateJobResult(ctx context.Context, id string, status models.JobStatus, message string) error {
	if !status.Terminal() {
		return fmt.Errorf("cannot transition job %s to non-terminal status %q", id, status)
	}

	res := s.db.WithContext(ctx).
		Model(&models.ScheduledJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusPending).
		Updates(map[string]any{
			"status":         status,
			"result_message": message,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update job result: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&models.ScheduledJob{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check job existence: %w", err)
		}
		if count == 0 {
			return ErrJobNotFound
		}
		return ErrInvalidTransition
	}

	return nil
}
