package service

import (
	"context"

	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/repository"
	"github.com/roadshare/carpool-backend/pkg/logger"
)

// RatingStore is the rating persistence surface the rating service needs.
type RatingStore interface {
	GetByID(ctx context.Context, id uint64) (model.RatingRequest, error)
	Rate(ctx context.Context, id uint64, rating int, comments string) error
	Delete(ctx context.Context, id uint64) error
	AverageFor(ctx context.Context, userID uint64) (float64, error)
	CommentsFor(ctx context.Context, userID uint64) ([]repository.Comment, error)
	PendingFor(ctx context.Context, userID uint64, rideID uint64) ([]repository.PendingSlot, error)
}

// RatingService covers filling, dismissing and aggregating rating slots.
type RatingService struct {
	ratings RatingStore
	log     logger.Logger
}

func NewRatingService(ratings RatingStore, log logger.Logger) *RatingService {
	return &RatingService{ratings: ratings, log: log}
}

// Rate submits a rating into an open slot. The value is 0..5 and immutable
// once written; the sentinel re-check in the update's WHERE catches a
// concurrent submit that got there first.
func (s *RatingService) Rate(ctx context.Context, userID, slotID uint64, rating int, comments string) error {
	slot, err := s.ratings.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if err := slot.CanRate(userID, rating); err != nil {
		return err
	}
	if err := s.ratings.Rate(ctx, slotID, rating, comments); err != nil {
		return err
	}
	s.log.Info("rating submitted",
		logger.Uint64("slot_id", slotID),
		logger.Uint64("rater_id", userID),
		logger.Int("rating", rating))
	return nil
}

// Dismiss removes a still-unrated slot so it stops appearing in the rater's
// pending list. Filled slots cannot be removed.
func (s *RatingService) Dismiss(ctx context.Context, userID, slotID uint64) error {
	slot, err := s.ratings.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if err := slot.CanRemove(userID); err != nil {
		return err
	}
	return s.ratings.Delete(ctx, slotID)
}

// AverageFor returns the user's average rating, or model.DefaultRating when
// no ratings were submitted yet.
func (s *RatingService) AverageFor(ctx context.Context, userID uint64) (float64, error) {
	return s.ratings.AverageFor(ctx, userID)
}

// CommentsFor returns the non-empty comments left about the user.
func (s *RatingService) CommentsFor(ctx context.Context, userID uint64) ([]repository.Comment, error) {
	return s.ratings.CommentsFor(ctx, userID)
}

// PendingFor returns the slots still waiting on the user, optionally
// scoped to one ride.
func (s *RatingService) PendingFor(ctx context.Context, userID, rideID uint64) ([]repository.PendingSlot, error) {
	return s.ratings.PendingFor(ctx, userID, rideID)
}
