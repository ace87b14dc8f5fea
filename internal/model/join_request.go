package model

import "time"

// Join request status values. pending is the only non-terminal state.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// JoinRequest represents a passenger's request to occupy seats on a ride,
// stored in the `join_requests` table. At most one row exists per
// (ride_id, passenger_id) pair; the unique key enforces it and a second
// submit is rejected no matter what happened to the first.
//
// Fields:
//  ID             – primary key identifier.
//  RideID         – ride being requested.
//  PassengerID    – requesting user.
//  Status         – pending, accepted or rejected.
//  RequestedSeats – seats asked for, always >= 1.
//  CreatedAt      – timestamp of creation.
type JoinRequest struct {
	ID             uint64    // join_requests.id
	RideID         uint64    // join_requests.ride_id
	PassengerID    uint64    // join_requests.passenger_id
	Status         string    // join_requests.status
	RequestedSeats int       // join_requests.requested_seats
	CreatedAt      time.Time // join_requests.created_at
}

// CanDecide checks that the request still awaits a decision and belongs to
// the given ride. A request on a different ride is reported as a mismatch,
// not a state conflict.
func (j *JoinRequest) CanDecide(rideID uint64) error {
	if j.RideID != rideID {
		return ErrRequestMismatch
	}
	if j.Status != RequestStatusPending {
		return ErrRequestNotPending
	}
	return nil
}

// ValidateSubmit applies the pure submit-time rules against the target ride.
// Duplicate detection needs the store and is handled by the unique key.
func (j *JoinRequest) ValidateSubmit(ride *Ride) error {
	if j.RequestedSeats < 1 {
		return ErrInvalidSeatCount
	}
	if j.PassengerID == ride.DriverID {
		return ErrSelfJoin
	}
	if !ride.CanSeat(j.RequestedSeats) {
		return ErrNoAvailableSeats
	}
	return nil
}
