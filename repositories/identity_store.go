package repositories

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"nutriflow/models"
)

var (
	ErrIdentityExists   = errors.New("identity already exists")
	ErrIdentityNotFound = errors.New("identity not found")
)

// IdentityStore backs the self-hosted identity provider.
type IdentityStore interface {
	CreateIdentity(ctx context.Context, identity *models.Identity) error
	FindIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
	DeleteIdentity(ctx context.Context, id string) error
	MarkEmailVerified(ctx context.Context, id string, at time.Time) error
}

// InMemoryIdentityStore keys identities by id and indexes them by
// case-folded email.
type InMemoryIdentityStore struct {
	mu      sync.RWMutex
	byID    map[string]models.Identity
	byEmail map[string]string
}

func NewInMemoryIdentityStore() *InMemoryIdentityStore {
	return &InMemoryIdentityStore{
		byID:    make(map[string]models.Identity),
		byEmail: make(map[string]string),
	}
}

func (s *InMemoryIdentityStore) CreateIdentity(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(identity.Email)
	if _, exists := s.byEmail[email]; exists {
		return ErrIdentityExists
	}
	if _, exists := s.byID[identity.ID]; exists {
		return ErrIdentityExists
	}
	now := time.Now().UTC()
	identity.CreatedAt = now
	identity.UpdatedAt = now
	s.byID[identity.ID] = *identity
	s.byEmail[email] = identity.ID
	return nil
}

func (s *InMemoryIdentityStore) FindIdentityByEmail(_ context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, exists := s.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, ErrIdentityNotFound
	}
	identity := s.byID[id]
	return &identity, nil
}

func (s *InMemoryIdentityStore) DeleteIdentity(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, exists := s.byID[id]
	if !exists {
		return ErrIdentityNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, strings.ToLower(identity.Email))
	return nil
}

func (s *InMemoryIdentityStore) MarkEmailVerified(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, exists := s.byID[id]
	if !exists {
		return ErrIdentityNotFound
	}
	identity.EmailVerifiedAt = &at
	identity.UpdatedAt = at
	s.byID[id] = identity
	return nil
}
