package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roadshare/carpool-backend/pkg/logger"
)

type fakeDeleter struct {
	calls int
	at    time.Time
	n     int64
	err   error
}

func (f *fakeDeleter) delete(_ context.Context, now time.Time) (int64, error) {
	f.calls++
	f.at = now
	return f.n, f.err
}

func (f *fakeDeleter) DeleteStaleWaiting(ctx context.Context, now time.Time) (int64, error) {
	return f.delete(ctx, now)
}

func (f *fakeDeleter) DeleteUnacceptedForPastRides(ctx context.Context, now time.Time) (int64, error) {
	return f.delete(ctx, now)
}

func (f *fakeDeleter) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.delete(ctx, now)
}

func TestCleanupRunOnce(t *testing.T) {
	rides := &fakeDeleter{n: 2}
	requests := &fakeDeleter{err: errors.New("table locked")}
	codes := &fakeDeleter{n: 1}

	s := NewCleanupService(rides, requests, codes, time.Minute, logger.Nop())
	s.now = fixedNow
	s.RunOnce(context.Background())

	for name, d := range map[string]*fakeDeleter{"rides": rides, "requests": requests, "codes": codes} {
		if d.calls != 1 {
			t.Errorf("%s purge ran %d times, want 1", name, d.calls)
		}
		if !d.at.Equal(testNow) {
			t.Errorf("%s purge saw now=%v, want %v", name, d.at, testNow)
		}
	}
}

func TestCleanupRunStopsOnCancel(t *testing.T) {
	rides, requests, codes := &fakeDeleter{}, &fakeDeleter{}, &fakeDeleter{}
	s := NewCleanupService(rides, requests, codes, time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if rides.calls == 0 {
		t.Error("ticker never fired")
	}
}
