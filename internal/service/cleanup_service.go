package service

import (
	"context"
	"time"

	"github.com/roadshare/carpool-backend/pkg/logger"
)

// StaleRideDeleter purges waiting rides whose departure has passed.
type StaleRideDeleter interface {
	DeleteStaleWaiting(ctx context.Context, now time.Time) (int64, error)
}

// StaleRequestDeleter purges unaccepted requests on past rides.
type StaleRequestDeleter interface {
	DeleteUnacceptedForPastRides(ctx context.Context, now time.Time) (int64, error)
}

// ExpiredCodeDeleter purges verification codes past their validity window.
type ExpiredCodeDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CleanupService runs the periodic purges. Every purge is idempotent, so
// overlapping runs across instances are harmless.
type CleanupService struct {
	rides    StaleRideDeleter
	requests StaleRequestDeleter
	codes    ExpiredCodeDeleter
	interval time.Duration
	log      logger.Logger
	now      func() time.Time
}

func NewCleanupService(rides StaleRideDeleter, requests StaleRequestDeleter, codes ExpiredCodeDeleter,
	interval time.Duration, log logger.Logger) *CleanupService {
	return &CleanupService{
		rides:    rides,
		requests: requests,
		codes:    codes,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// RunOnce executes all purges at the current time and logs what was
// removed. Errors are logged per purge and do not stop the others.
func (s *CleanupService) RunOnce(ctx context.Context) {
	now := s.now()

	if n, err := s.rides.DeleteStaleWaiting(ctx, now); err != nil {
		s.log.Error("purge stale rides failed", logger.Error(err))
	} else if n > 0 {
		s.log.Info("purged stale waiting rides", logger.Int64("count", n))
	}

	if n, err := s.requests.DeleteUnacceptedForPastRides(ctx, now); err != nil {
		s.log.Error("purge stale requests failed", logger.Error(err))
	} else if n > 0 {
		s.log.Info("purged stale join requests", logger.Int64("count", n))
	}

	if n, err := s.codes.DeleteExpired(ctx, now); err != nil {
		s.log.Error("purge expired codes failed", logger.Error(err))
	} else if n > 0 {
		s.log.Info("purged expired verification codes", logger.Int64("count", n))
	}
}

// Run loops RunOnce on the configured interval until the context ends.
// Intended to run in its own goroutine.
func (s *CleanupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
