package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestTracker_BlocksAfterLimit(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(NewMemoryStore(), WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < DefaultLimit; i++ {
		if err := tr.Allow(ctx, "a@b.com"); err != nil {
			t.Fatalf("attempt %d should be allowed: %v", i+1, err)
		}
		if err := tr.RecordFailure(ctx, "a@b.com"); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	if err := tr.Allow(ctx, "a@b.com"); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("after %d failures: got %v, want ErrTooManyAttempts", DefaultLimit, err)
	}
	// Other identities are unaffected.
	if err := tr.Allow(ctx, "other@b.com"); err != nil {
		t.Errorf("unrelated identity blocked: %v", err)
	}
}

func TestTracker_WindowSlides(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(NewMemoryStore(), WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < DefaultLimit; i++ {
		_ = tr.RecordFailure(ctx, "a@b.com")
	}
	if err := tr.Allow(ctx, "a@b.com"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected block, got %v", err)
	}

	clock.Advance(DefaultWindow + time.Second)
	if err := tr.Allow(ctx, "a@b.com"); err != nil {
		t.Errorf("attempts outside the window still count: %v", err)
	}
}

func TestTracker_PartialWindowSlide(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(NewMemoryStore(), WithClock(clock.Now))
	ctx := context.Background()

	// Two old failures, then three fresh ones after half a window.
	_ = tr.RecordFailure(ctx, "a@b.com")
	_ = tr.RecordFailure(ctx, "a@b.com")
	clock.Advance(DefaultWindow / 2)
	for i := 0; i < 3; i++ {
		_ = tr.RecordFailure(ctx, "a@b.com")
	}
	if err := tr.Allow(ctx, "a@b.com"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("five failures in window should block, got %v", err)
	}

	// Sliding past the first two leaves three in the window.
	clock.Advance(DefaultWindow/2 + time.Second)
	if err := tr.Allow(ctx, "a@b.com"); err != nil {
		t.Errorf("three in-window failures should not block: %v", err)
	}
}

func TestTracker_ClearResets(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(NewMemoryStore(), WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < DefaultLimit; i++ {
		_ = tr.RecordFailure(ctx, "a@b.com")
	}
	if err := tr.Clear(ctx, "a@b.com"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := tr.Allow(ctx, "a@b.com"); err != nil {
		t.Errorf("cleared identity still blocked: %v", err)
	}
}

func TestTracker_CustomLimit(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(NewMemoryStore(), WithClock(clock.Now), WithLimit(2), WithWindow(time.Minute))
	ctx := context.Background()

	_ = tr.RecordFailure(ctx, "x")
	if err := tr.Allow(ctx, "x"); err != nil {
		t.Fatalf("one failure under limit 2: %v", err)
	}
	_ = tr.RecordFailure(ctx, "x")
	if err := tr.Allow(ctx, "x"); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("two failures at limit 2: got %v", err)
	}
	clock.Advance(time.Minute + time.Second)
	if err := tr.Allow(ctx, "x"); err != nil {
		t.Errorf("custom window should slide: %v", err)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	at := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Record(ctx, "k", at)
		}()
	}
	wg.Wait()

	n, err := store.CountSince(ctx, "k", at.Add(-time.Minute))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 50 {
		t.Errorf("count = %d, want 50", n)
	}
}
