package database

import (
	"context"
	"errors"
	"fmt"

	"nutriflow/models"
	"nutriflow/repositories"

	"gorm.io/gorm"
)

// ProfileStore keeps profiles in the profiles table.
type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// InsertProfile creates the row; an existing id is reported as
// repositories.ErrProfileExists.
func (s *ProfileStore) InsertProfile(ctx context.Context, p models.Profile) error {
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	err := s.db.WithContext(ctx).Create(&p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("insert profile %s: %w", p.ID, err)
	}
	return nil
}
