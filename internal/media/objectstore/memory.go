package objectstore

import (
	"context"
	"sync"
)

type Object struct {
	ContentType string
	Data        []byte
}

// InMemory is an object store for local runs and tests.
type InMemory struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[string]Object)}
}

func (s *InMemory) Put(_ context.Context, name, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = Object{ContentType: contentType, Data: append([]byte(nil), data...)}
	return nil
}

func (s *InMemory) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[name]
	return ok, nil
}

func (s *InMemory) Get(name string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[name]
	return o, ok
}
