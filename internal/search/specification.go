// Package search implements the composable ride-search predicates. Each
// specification can test a single ride in memory and contribute a filter to
// the bulk SQL query; both forms agree on the final result set, so the
// order specifications are applied in only affects how much work the
// database does, never which rides come back.
package search

import (
	"context"
	"time"

	"github.com/roadshare/carpool-backend/internal/geo"
	"github.com/roadshare/carpool-backend/internal/model"
)

// DefaultWindow is the departure-window half-width used when a caller
// supplies a target time without a delta.
const DefaultWindow = 5 * time.Hour

// Specification filters rides. SatisfiedBy evaluates one ride in memory;
// Apply narrows the bulk query where the predicate can be expressed in SQL.
// Location predicates leave the query untouched and do all their work in
// SatisfiedBy.
type Specification interface {
	SatisfiedBy(ctx context.Context, r *model.Ride) (bool, error)
	Apply(q *Query)
}

// AvailableSeats matches rides offering at least n seats.
type AvailableSeats struct {
	Seats int
}

func (s AvailableSeats) SatisfiedBy(_ context.Context, r *model.Ride) (bool, error) {
	return r.AvailableSeats >= s.Seats, nil
}

func (s AvailableSeats) Apply(q *Query) {
	q.Add("available_seats >= ?", s.Seats)
}

// RideStatus matches rides in the given status.
type RideStatus struct {
	Status string
}

func (s RideStatus) SatisfiedBy(_ context.Context, r *model.Ride) (bool, error) {
	return r.Status == s.Status, nil
}

func (s RideStatus) Apply(q *Query) {
	q.Add("status = ?", s.Status)
}

// NotOwnedBy excludes the requesting user's own rides.
type NotOwnedBy struct {
	UserID uint64
}

func (s NotOwnedBy) SatisfiedBy(_ context.Context, r *model.Ride) (bool, error) {
	return r.DriverID != s.UserID, nil
}

func (s NotOwnedBy) Apply(q *Query) {
	q.Add("driver_id <> ?", s.UserID)
}

// DepartureWindow matches rides departing in [max(target-delta, now),
// target+delta], bounds inclusive. The lower bound is clamped to now so a
// wide window can never surface a ride whose pickup time already passed.
type DepartureWindow struct {
	lo time.Time
	hi time.Time
}

// NewDepartureWindow builds the window around target. A non-positive delta
// falls back to DefaultWindow.
func NewDepartureWindow(target time.Time, delta time.Duration, now time.Time) DepartureWindow {
	if delta <= 0 {
		delta = DefaultWindow
	}
	lo := target.Add(-delta)
	if lo.Before(now) {
		lo = now
	}
	return DepartureWindow{lo: lo, hi: target.Add(delta)}
}

func (s DepartureWindow) SatisfiedBy(_ context.Context, r *model.Ride) (bool, error) {
	return !r.DepartureAt.Before(s.lo) && !r.DepartureAt.After(s.hi), nil
}

func (s DepartureWindow) Apply(q *Query) {
	q.Add("departure_at BETWEEN ? AND ?", s.lo, s.hi)
}

// Bounds exposes the effective window, mainly for logging and tests.
func (s DepartureWindow) Bounds() (time.Time, time.Time) {
	return s.lo, s.hi
}

// LocationField selects which ride endpoint a NearLocation predicate
// measures against.
type LocationField int

const (
	FieldDeparture LocationField = iota
	FieldDestination
)

// NearLocation matches rides whose chosen endpoint lies within RadiusKm of
// Center. Callers pass a pre-parsed center point; the ride's own endpoint
// is parsed per row, and distance goes through the injected calculator so
// provider-backed and offline measurement stay interchangeable.
type NearLocation struct {
	Center   geo.Point
	RadiusKm float64
	Field    LocationField
	Calc     geo.DistanceCalculator
}

func (s NearLocation) SatisfiedBy(ctx context.Context, r *model.Ride) (bool, error) {
	raw := r.DepartureLocation
	if s.Field == FieldDestination {
		raw = r.Destination
	}
	p, err := geo.ParseLocation(raw)
	if err != nil {
		return false, err
	}
	km, err := s.Calc.DistanceKm(ctx, s.Center, p)
	if err != nil {
		return false, err
	}
	return km <= s.RadiusKm, nil
}

// Apply is a no-op: distance is not push-down-able.
func (s NearLocation) Apply(_ *Query) {}

// And is the conjunction of its children. Apply narrows the query with
// every pushable child; SatisfiedBy requires every child to pass.
type And struct {
	Specs []Specification
}

// NewAnd builds a conjunction from the given specifications.
func NewAnd(specs ...Specification) And {
	return And{Specs: specs}
}

func (s And) SatisfiedBy(ctx context.Context, r *model.Ride) (bool, error) {
	for _, spec := range s.Specs {
		ok, err := spec.SatisfiedBy(ctx, r)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s And) Apply(q *Query) {
	for _, spec := range s.Specs {
		spec.Apply(q)
	}
}
