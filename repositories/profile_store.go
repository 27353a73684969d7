package repositories

import (
	"context"
	"errors"
	"sync"

	"nutriflow/models"
)

var ErrProfileExists = errors.New("profile already exists")

// InMemoryProfileStore backs the memory backend.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		profiles: make(map[string]models.Profile),
	}
}

func (s *InMemoryProfileStore) InsertProfile(_ context.Context, p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[p.ID]; exists {
		return ErrProfileExists
	}
	p.Allergies = append([]string{}, p.Allergies...)
	s.profiles[p.ID] = p
	return nil
}
