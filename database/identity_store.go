package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutriflow/models"
	"nutriflow/repositories"

	"gorm.io/gorm"
)

// IdentityStore keeps the self-hosted provider's accounts in the identities
// table. Emails are stored lower-cased.
type IdentityStore struct {
	db *gorm.DB
}

func NewIdentityStore(db *gorm.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

func (s *IdentityStore) CreateIdentity(ctx context.Context, identity *models.Identity) error {
	identity.Email = strings.ToLower(identity.Email)
	err := s.db.WithContext(ctx).Create(identity).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrIdentityExists
	}
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *IdentityStore) FindIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var identity models.Identity
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *IdentityStore) DeleteIdentity(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Identity{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrIdentityNotFound
	}
	return nil
}

func (s *IdentityStore) MarkEmailVerified(ctx context.Context, id string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.Identity{}).
		Where("id = ?", id).
		Updates(map[string]any{"email_verified_at": at, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrIdentityNotFound
	}
	return nil
}
