package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tidecast/tidecast/internal/models"
)

// AccountSpec is the registration input for a platform account.
type AccountSpec struct {
	Platform     string
	AccountName  string
	AccessToken  string
	RefreshToken string
	Metadata     map[string]string
}

func (s *Store) CreateAccount(ctx context.Context, spec AccountSpec) (*models.PlatformAccount, error) {
	if strings.TrimSpace(spec.Platform) == "" {
		return nil, validationErr("platform", "must not be empty")
	}
	if strings.TrimSpace(spec.AccountName) == "" {
		return nil, validationErr("accountName", "must not be empty")
	}
	if strings.TrimSpace(spec.AccessToken) == "" {
		return nil, validationErr("accessToken", "must not be empty")
	}

	metadata := "{}"
	if len(spec.Metadata) > 0 {
		raw, err := json.Marshal(spec.Metadata)
		if err != nil {
			return nil, validationErr("metadata", "must be a flat key-value object")
		}
		metadata = string(raw)
	}

	account := &models.PlatformAccount{
		ID:           uuid.NewString(),
		Platform:     strings.TrimSpace(spec.Platform),
		AccountName:  strings.TrimSpace(spec.AccountName),
		AccessToken:  spec.AccessToken,
		RefreshToken: spec.RefreshToken,
		Metadata:     metadata,
	}

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create platform account: %w", err)
	}

	return account, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*models.PlatformAccount, error) {
	var account models.PlatformAccount
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get platform account: %w", err)
	}
	return &account, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.PlatformAccount, error) {
	var accounts []models.PlatformAccount
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list platform accounts: %w", err)
	}
	return accounts, nil
}
