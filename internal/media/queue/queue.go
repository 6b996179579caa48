// Package queue publishes outbound relay messages.
package queue

import "context"

// Record is a keyed payload handed to the relay's delivery queue.
type Record struct {
	Key   string
	Value []byte
}

// Publisher is satisfied by Kafka and InMemory.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}
