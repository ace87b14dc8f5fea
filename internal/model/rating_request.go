package model

// UnratedSentinel marks a rating slot that has not been filled in yet.
const UnratedSentinel = -1

// DefaultRating is the neutral average reported for a user with no ratings,
// so new users are not penalized before completing any rides.
const DefaultRating = 3.0

// RatingRequest is a pending or completed rating slot between two ride
// participants, stored in the `rating_requests` table. Rows are created in
// pairs at ride completion (driver->passenger and passenger->driver) and a
// unique key over (rater_id, rated_id, ride_id) makes regeneration
// idempotent.
//
// Fields:
//  ID       – primary key identifier.
//  RaterID  – user who must submit the rating.
//  RatedID  – user being rated.
//  RideID   – ride the rating refers to.
//  Rating   – -1 while unrated, otherwise 0..5. Immutable once set.
//  Comments – free-form comment given with the rating.
type RatingRequest struct {
	ID       uint64 // rating_requests.id
	RaterID  uint64 // rating_requests.rater_id
	RatedID  uint64 // rating_requests.rated_id
	RideID   uint64 // rating_requests.ride_id
	Rating   int    // rating_requests.rating
	Comments string // rating_requests.comments
}

// CanRate checks whether the given user may submit the given value into
// this slot.
func (rr *RatingRequest) CanRate(userID uint64, rating int) error {
	if rr.Rating != UnratedSentinel {
		return ErrAlreadyRated
	}
	if rating < 0 || rating > 5 {
		return ErrInvalidRating
	}
	if rr.RaterID != userID {
		return ErrNotRater
	}
	return nil
}

// CanRemove checks whether the given user may delete this still-unrated slot.
func (rr *RatingRequest) CanRemove(userID uint64) error {
	if rr.Rating != UnratedSentinel {
		return ErrAlreadyRated
	}
	if rr.RaterID != userID {
		return ErrNotRater
	}
	return nil
}
