// Package model holds the domain entities persisted by the repository layer
// together with the pure lifecycle rules that govern them. Sentinel errors
// defined here describe business-rule violations; handlers translate them
// into HTTP statuses and the services never retry them automatically.
package model

import "errors"

// Authorization failures. No partial mutation may occur once one of these is
// returned.
var (
	// ErrNotRideOwner is returned when a caller tries to mutate a ride or
	// its join requests without being the posting driver.
	ErrNotRideOwner = errors.New("not the ride owner")

	// ErrNotRater is returned when a caller tries to act on a rating slot
	// that belongs to a different rater.
	ErrNotRater = errors.New("not the original rater")
)

// State-conflict failures. The caller may re-fetch and retry as a new user
// action.
var (
	// ErrInvalidTransition is returned for a ride status change outside
	// waiting -> in_progress -> completed.
	ErrInvalidTransition = errors.New("invalid ride status transition")

	// ErrTooEarlyToStart is returned when a driver starts a ride more than
	// the allowed lead time before departure.
	ErrTooEarlyToStart = errors.New("too early to start the ride")

	// ErrRideNotWaiting is returned when a join request is managed on a
	// ride that already started or finished.
	ErrRideNotWaiting = errors.New("ride is not waiting")

	// ErrDepartureElapsed is returned when a join request is managed after
	// the ride's departure time has passed.
	ErrDepartureElapsed = errors.New("departure time has elapsed")

	// ErrNoAvailableSeats is returned when accepting or submitting a
	// request would push confirmed passengers past capacity.
	ErrNoAvailableSeats = errors.New("not enough available seats")

	// ErrDuplicateRequest is returned when a passenger submits a second
	// join request for the same ride, regardless of the first one's status.
	ErrDuplicateRequest = errors.New("join request already exists for this ride")

	// ErrRequestNotPending is returned when deciding a join request that
	// was already accepted or rejected.
	ErrRequestNotPending = errors.New("join request is not pending")

	// ErrRequestMismatch is returned when a join request id does not
	// belong to the ride named in the call. Handlers report it as not
	// found so request ids on other rides cannot be probed.
	ErrRequestMismatch = errors.New("join request not found on this ride")

	// ErrAlreadyRated is returned when rating or removing a slot whose
	// rating was already submitted.
	ErrAlreadyRated = errors.New("rating already submitted")
)

// Validation failures.
var (
	// ErrSelfJoin is returned when a driver requests to join their own ride.
	ErrSelfJoin = errors.New("driver cannot join own ride")

	// ErrInvalidSeatCount is returned for a join request asking for fewer
	// than one seat.
	ErrInvalidSeatCount = errors.New("requested seats must be at least 1")

	// ErrInvalidRating is returned for a rating value outside [0,5].
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrDeparturePassed is returned when posting or editing a ride whose
	// departure is not strictly in the future.
	ErrDeparturePassed = errors.New("departure must be in the future")

	// ErrNoSeatsOffered is returned when posting a ride without seats.
	ErrNoSeatsOffered = errors.New("available seats must be greater than 0")

	// ErrScheduleOverlap is returned when the driver already has a
	// non-completed ride departing within the double-booking window.
	ErrScheduleOverlap = errors.New("driver already has a ride scheduled near this departure")

	// ErrInvalidRadius is returned when posting or editing a ride with a
	// non-positive pickup or drop radius.
	ErrInvalidRadius = errors.New("radius must be greater than 0")
)

// Verification failures. Codes are single-use: both outcomes consume the
// stored code.
var (
	// ErrCodeExpired is returned when a verification code is submitted
	// after its validity window.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrCodeMismatch is returned when the submitted code does not match
	// the one on record.
	ErrCodeMismatch = errors.New("verification code does not match")
)
