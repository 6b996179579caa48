package store

import (
	"context"
	"sync"

	"civicdesk/internal/grievance/models"
)

// InMemory is the development and test backend.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*models.Grievance
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*models.Grievance)}
}

// CreateIfAbsent inserts g unless its id is taken. Returns ErrAlreadyUsed on duplicate.
func (s *InMemory) CreateIfAbsent(_ context.Context, g *models.Grievance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[g.ID]; ok {
		return ErrAlreadyUsed
	}
	s.records[g.ID] = g.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Grievance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

func (s *InMemory) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok, nil
}

// Execute runs validate then mutate on a copy under the write lock and
// commits the copy only if validate passes.
func (s *InMemory) Execute(_ context.Context, id string, validate func(*models.Grievance) error, mutate func(*models.Grievance)) (*models.Grievance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := current.Clone()
	if validate != nil {
		if err := validate(working); err != nil {
			return nil, err
		}
	}
	mutate(working)
	s.records[id] = working
	return working.Clone(), nil
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.Grievance, error) {
	s.mu.RLock()
	out := make([]*models.Grievance, 0, len(s.records))
	for _, g := range s.records {
		out = append(out, g.Clone())
	}
	s.mu.RUnlock()

	sortRecords(out)
	return out, nil
}
