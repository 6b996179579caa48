package queue

import (
	"context"
	"sync"
)

// InMemory keeps published records for local runs and tests.
type InMemory struct {
	mu      sync.Mutex
	records []Record
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (q *InMemory) Publish(_ context.Context, rec Record) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	value := append([]byte(nil), rec.Value...)
	q.records = append(q.records, Record{Key: rec.Key, Value: value})
	return nil
}

// Records returns a copy of everything published so far, oldest first.
func (q *InMemory) Records() []Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Record, len(q.records))
	copy(out, q.records)
	return out
}
