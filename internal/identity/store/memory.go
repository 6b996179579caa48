package store

import (
	"context"
	"sync"

	"civicdesk/internal/identity/models"
)

// InMemory keeps accounts keyed by normalized email.
type InMemory struct {
	mu      sync.RWMutex
	byEmail map[string]models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{byEmail: make(map[string]models.Account)}
}

func (s *InMemory) Create(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[a.Email]; ok {
		return ErrEmailExists
	}
	s.byEmail[a.Email] = *a
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}
