package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyAttempts is returned when an identity exhausted its failed
// login budget inside the sliding window.
var ErrTooManyAttempts = errors.New("too many failed login attempts, try again later")

const (
	// DefaultLimit is how many failed attempts are tolerated per window.
	DefaultLimit = 5
	// DefaultWindow is the sliding window over which failures count.
	DefaultWindow = 15 * time.Minute
)

// AttemptStore records failed login attempts for an identity and answers
// how many landed inside a window. Implementations must be safe for
// concurrent use.
type AttemptStore interface {
	// Record adds a failed attempt at the given instant.
	Record(ctx context.Context, key string, at time.Time) error
	// CountSince returns the number of attempts at or after the cutoff.
	CountSince(ctx context.Context, key string, cutoff time.Time) (int, error)
	// Reset drops all attempts for the identity.
	Reset(ctx context.Context, key string) error
}

// Tracker is a login attempt governor: it refuses further attempts once an
// identity accumulated Limit failures within Window.
type Tracker struct {
	store  AttemptStore
	limit  int
	window time.Duration
	now    func() time.Time
}

// Option tweaks a Tracker.
type Option func(*Tracker)

// WithLimit overrides the failed attempt budget.
func WithLimit(n int) Option { return func(t *Tracker) { t.limit = n } }

// WithWindow overrides the sliding window length.
func WithWindow(d time.Duration) Option { return func(t *Tracker) { t.window = d } }

// WithClock injects a time source, used by tests.
func WithClock(now func() time.Time) Option { return func(t *Tracker) { t.now = now } }

// NewTracker builds a governor over the given store.
func NewTracker(store AttemptStore, opts ...Option) *Tracker {
	t := &Tracker{store: store, limit: DefaultLimit, window: DefaultWindow, now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Allow reports whether the identity may attempt a login right now. It
// returns ErrTooManyAttempts when the budget is spent.
func (t *Tracker) Allow(ctx context.Context, key string) error {
	n, err := t.store.CountSince(ctx, key, t.now().Add(-t.window))
	if err != nil {
		return err
	}
	if n >= t.limit {
		return ErrTooManyAttempts
	}
	return nil
}

// RecordFailure notes a failed attempt for the identity.
func (t *Tracker) RecordFailure(ctx context.Context, key string) error {
	return t.store.Record(ctx, key, t.now())
}

// Clear forgets all failures for the identity, called after a successful
// login.
func (t *Tracker) Clear(ctx context.Context, key string) error {
	return t.store.Reset(ctx, key)
}

// MemoryStore keeps attempts in process memory. Entries older than the
// retention passed to CountSince are pruned lazily on access.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewMemoryStore builds an empty in-memory attempt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{attempts: make(map[string][]time.Time)}
}

func (m *MemoryStore) Record(_ context.Context, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[key] = append(m.attempts[key], at)
	return nil
}

func (m *MemoryStore) CountSince(_ context.Context, key string, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.attempts[key][:0]
	for _, at := range m.attempts[key] {
		if !at.Before(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(m.attempts, key)
		return 0, nil
	}
	m.attempts[key] = kept
	return len(kept), nil
}

func (m *MemoryStore) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, key)
	return nil
}
