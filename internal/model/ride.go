package model

import "time"

// Ride status values. Transitions are monotonic: waiting -> in_progress ->
// completed, with no way back.
const (
	RideStatusWaiting    = "waiting"
	RideStatusInProgress = "in_progress"
	RideStatusCompleted  = "completed"
)

// StartLeadTime is how long before the scheduled departure a driver may
// start the ride.
const StartLeadTime = 30 * time.Minute

// ScheduleWindow is the double-booking guard: a driver may not post two
// non-completed rides whose departures fall within this distance of each
// other.
const ScheduleWindow = 5 * time.Hour

// Ride represents a driver-posted future trip as stored in the `rides`
// table. Locations are "lat,lng" strings and radii are kilometres around
// them; the geo package parses and measures against both.
//
// Invariant: ConfirmedPassengers never exceeds AvailableSeats. The accept
// path enforces it inside a row-locking transaction.
//
// Fields:
//  ID                  – primary key identifier.
//  DriverID            – user who posted the ride.
//  Status              – waiting, in_progress or completed.
//  DepartureLocation   – "lat,lng" departure point.
//  PickupRadius        – pickup radius around the departure point, km.
//  Destination         – "lat,lng" destination point.
//  DropRadius          – drop radius around the destination, km.
//  DepartureAt         – scheduled departure time (UTC).
//  AvailableSeats      – total seats offered, always > 0.
//  ConfirmedPassengers – seats already granted to accepted requests.
//  Notes               – free-form driver notes.
//  CreatedAt           – timestamp of creation.
type Ride struct {
	ID                  uint64    // rides.id
	DriverID            uint64    // rides.driver_id
	Status              string    // rides.status
	DepartureLocation   string    // rides.departure_location
	PickupRadius        float64   // rides.pickup_radius
	Destination         string    // rides.destination
	DropRadius          float64   // rides.drop_radius
	DepartureAt         time.Time // rides.departure_at
	AvailableSeats      int       // rides.available_seats
	ConfirmedPassengers int       // rides.confirmed_passengers
	Notes               string    // rides.notes
	CreatedAt           time.Time // rides.created_at
}

// allowedTransitions encodes the ride state flow as data.
var allowedTransitions = map[string]string{
	RideStatusWaiting:    RideStatusInProgress,
	RideStatusInProgress: RideStatusCompleted,
}

// CanTransition reports whether a ride may move from one status to another.
func CanTransition(from, to string) bool {
	return allowedTransitions[from] == to
}

// CanStart checks whether the given driver may start the ride at the given
// time. Pure: callers persist the transition separately.
func (r *Ride) CanStart(driverID uint64, now time.Time) error {
	if r.DriverID != driverID {
		return ErrNotRideOwner
	}
	if !CanTransition(r.Status, RideStatusInProgress) {
		return ErrInvalidTransition
	}
	if now.Before(r.DepartureAt.Add(-StartLeadTime)) {
		return ErrTooEarlyToStart
	}
	return nil
}

// CanEnd checks whether the given driver may end the ride.
func (r *Ride) CanEnd(driverID uint64) error {
	if r.DriverID != driverID {
		return ErrNotRideOwner
	}
	if !CanTransition(r.Status, RideStatusCompleted) {
		return ErrInvalidTransition
	}
	return nil
}

// CanManageRequests checks whether the given driver may accept or reject
// join requests on the ride at the given time.
func (r *Ride) CanManageRequests(driverID uint64, now time.Time) error {
	if r.DriverID != driverID {
		return ErrNotRideOwner
	}
	if r.Status != RideStatusWaiting {
		return ErrRideNotWaiting
	}
	if !now.Before(r.DepartureAt) {
		return ErrDepartureElapsed
	}
	return nil
}

// SeatsLeft returns the seats still open on the ride.
func (r *Ride) SeatsLeft() int {
	return r.AvailableSeats - r.ConfirmedPassengers
}

// CanSeat reports whether granting the requested seats would keep the
// capacity invariant.
func (r *Ride) CanSeat(requested int) bool {
	return r.ConfirmedPassengers+requested <= r.AvailableSeats
}
