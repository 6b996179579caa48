// Package circuit provides a consecutive-failure circuit breaker for calls to
// upstream dependencies.
package circuit

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// FailureChange reports whether a failure tripped the breaker.
type FailureChange struct {
	Opened bool
}

// SuccessChange reports whether a success closed the breaker.
type SuccessChange struct {
	Closed bool
}

// Breaker opens after a run of consecutive failures and stays open until a run
// of consecutive successes closes it again. While open, Allow lets a probe
// through once the cooldown has elapsed since the last failure.
type Breaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	now              func() time.Time

	state     State
	failures  int
	successes int
	openUntil time.Time
}

type Option func(*Breaker)

func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 1,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Allow reports whether a call should be attempted. A closed breaker always
// allows; an open breaker allows probes once the cooldown has expired.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	return !b.now().Before(b.openUntil)
}

// RecordFailure counts a failure. useFallback is true whenever the breaker is
// open after the call.
func (b *Breaker) RecordFailure() (useFallback bool, change FailureChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	b.openUntil = b.now().Add(b.cooldown)
	if b.state == StateOpen {
		return true, FailureChange{}
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		b.failures = 0
		return true, FailureChange{Opened: true}
	}
	return false, FailureChange{}
}

// RecordSuccess counts a success. usePrimary is true whenever the breaker is
// closed after the call.
func (b *Breaker) RecordSuccess() (usePrimary bool, change SuccessChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateClosed {
		return true, SuccessChange{}
	}

	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.successes = 0
		return true, SuccessChange{Closed: true}
	}
	return false, SuccessChange{}
}
