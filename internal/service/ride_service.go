// Package service implements the application use cases on top of the
// repository layer. Services own transactions and event publication;
// business rules that need no storage live on the model types.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roadshare/carpool-backend/internal/geo"
	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/queue"
	"github.com/roadshare/carpool-backend/internal/repository"
	"github.com/roadshare/carpool-backend/internal/search"
	"github.com/roadshare/carpool-backend/pkg/logger"
)

// RideStore is the ride persistence surface the ride service needs.
type RideStore interface {
	Create(ctx context.Context, ride *model.Ride) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Ride, error)
	ListByDriver(ctx context.Context, driverID uint64) ([]model.Ride, error)
	Search(ctx context.Context, q *search.Query) ([]model.Ride, error)
	UpdateDetails(ctx context.Context, ride *model.Ride) error
	UpdateStatus(ctx context.Context, id uint64, from, to string) (bool, error)
	HasOverlapping(ctx context.Context, driverID uint64, departureAt time.Time, excludeID uint64) (bool, error)
}

// RequestReader lists join requests for fan-out at lifecycle transitions.
type RequestReader interface {
	ListByRide(ctx context.Context, rideID uint64, status string) ([]model.JoinRequest, error)
}

// RatingCreator opens rating slots when a ride completes.
type RatingCreator interface {
	Create(ctx context.Context, rr *model.RatingRequest) (uint64, error)
}

// EventPublisher sends domain events to the broker. Publish failures are
// logged but never fail the triggering operation.
type EventPublisher interface {
	Publish(ctx context.Context, queueName string, event any) error
}

// RideService covers posting, editing, searching and the lifecycle of rides.
type RideService struct {
	rides    RideStore
	requests RequestReader
	ratings  RatingCreator
	events   EventPublisher
	calc     geo.DistanceCalculator
	log      logger.Logger
	now      func() time.Time
}

// NewRideService wires a ride service. The distance calculator is used only
// by Search for radius filtering.
func NewRideService(rides RideStore, requests RequestReader, ratings RatingCreator,
	events EventPublisher, calc geo.DistanceCalculator, log logger.Logger) *RideService {
	return &RideService{
		rides:    rides,
		requests: requests,
		ratings:  ratings,
		events:   events,
		calc:     calc,
		log:      log,
		now:      time.Now,
	}
}

// PostRideInput carries the driver-supplied fields of a new or edited ride.
type PostRideInput struct {
	DepartureLocation string
	PickupRadius      float64
	Destination       string
	DropRadius        float64
	DepartureAt       time.Time
	AvailableSeats    int
	Notes             string
}

func (in *PostRideInput) validate(now time.Time) error {
	if _, err := geo.ParseLocation(in.DepartureLocation); err != nil {
		return err
	}
	if _, err := geo.ParseLocation(in.Destination); err != nil {
		return err
	}
	if in.PickupRadius <= 0 || in.DropRadius <= 0 {
		return model.ErrInvalidRadius
	}
	if in.AvailableSeats < 1 {
		return model.ErrNoSeatsOffered
	}
	if !in.DepartureAt.After(now) {
		return model.ErrDeparturePassed
	}
	return nil
}

// PostRide validates and stores a new future ride for the driver. The
// double-booking guard refuses a second non-completed ride departing within
// model.ScheduleWindow of an existing one.
func (s *RideService) PostRide(ctx context.Context, driverID uint64, in PostRideInput) (model.Ride, error) {
	now := s.now()
	if err := in.validate(now); err != nil {
		return model.Ride{}, err
	}
	overlaps, err := s.rides.HasOverlapping(ctx, driverID, in.DepartureAt, 0)
	if err != nil {
		return model.Ride{}, err
	}
	if overlaps {
		return model.Ride{}, model.ErrScheduleOverlap
	}

	ride := model.Ride{
		DriverID:          driverID,
		Status:            model.RideStatusWaiting,
		DepartureLocation: in.DepartureLocation,
		PickupRadius:      in.PickupRadius,
		Destination:       in.Destination,
		DropRadius:        in.DropRadius,
		DepartureAt:       in.DepartureAt.UTC(),
		AvailableSeats:    in.AvailableSeats,
		Notes:             in.Notes,
	}
	id, err := s.rides.Create(ctx, &ride)
	if err != nil {
		return model.Ride{}, err
	}
	ride.ID = id
	s.log.Info("ride posted",
		logger.Uint64("ride_id", id),
		logger.Uint64("driver_id", driverID),
		logger.Time("departure_at", ride.DepartureAt))
	return ride, nil
}

// UpdateRide edits a waiting ride owned by the driver. Seats may not drop
// below the passengers already confirmed.
func (s *RideService) UpdateRide(ctx context.Context, driverID, rideID uint64, in PostRideInput) (model.Ride, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return model.Ride{}, err
	}
	if ride.DriverID != driverID {
		return model.Ride{}, model.ErrNotRideOwner
	}
	if ride.Status != model.RideStatusWaiting {
		return model.Ride{}, model.ErrRideNotWaiting
	}
	now := s.now()
	if err := in.validate(now); err != nil {
		return model.Ride{}, err
	}
	if in.AvailableSeats < ride.ConfirmedPassengers {
		return model.Ride{}, model.ErrInvalidSeatCount
	}
	overlaps, err := s.rides.HasOverlapping(ctx, driverID, in.DepartureAt, rideID)
	if err != nil {
		return model.Ride{}, err
	}
	if overlaps {
		return model.Ride{}, model.ErrScheduleOverlap
	}

	ride.DepartureLocation = in.DepartureLocation
	ride.PickupRadius = in.PickupRadius
	ride.Destination = in.Destination
	ride.DropRadius = in.DropRadius
	ride.DepartureAt = in.DepartureAt.UTC()
	ride.AvailableSeats = in.AvailableSeats
	ride.Notes = in.Notes
	if err := s.rides.UpdateDetails(ctx, &ride); err != nil {
		return model.Ride{}, err
	}
	return ride, nil
}

// GetRide fetches one ride by id.
func (s *RideService) GetRide(ctx context.Context, rideID uint64) (model.Ride, error) {
	return s.rides.GetByID(ctx, rideID)
}

// ListByDriver returns all rides posted by the driver, newest departure
// first.
func (s *RideService) ListByDriver(ctx context.Context, driverID uint64) ([]model.Ride, error) {
	return s.rides.ListByDriver(ctx, driverID)
}

// StartRide moves a waiting ride to in_progress. Allowed from
// model.StartLeadTime before the scheduled departure, by the owner only.
// Accepted passengers are notified.
func (s *RideService) StartRide(ctx context.Context, driverID, rideID uint64) error {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if err := ride.CanStart(driverID, s.now()); err != nil {
		return err
	}
	changed, err := s.rides.UpdateStatus(ctx, rideID, model.RideStatusWaiting, model.RideStatusInProgress)
	if err != nil {
		return err
	}
	if !changed {
		// Lost a race with another transition.
		return model.ErrInvalidTransition
	}
	s.notifyAccepted(ctx, &ride, queue.KindRideStarted, "your ride has started")
	return nil
}

// EndRide moves an in_progress ride to completed and opens a pair of rating
// slots between the driver and every accepted passenger. The slots are
// created before the status flips so a failed insert leaves the ride
// in_progress and the driver can simply retry; the rerun skips the pairs
// that already exist.
func (s *RideService) EndRide(ctx context.Context, driverID, rideID uint64) error {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if err := ride.CanEnd(driverID); err != nil {
		return err
	}

	accepted, err := s.requests.ListByRide(ctx, rideID, model.RequestStatusAccepted)
	if err != nil {
		return err
	}
	for _, req := range accepted {
		if err := s.openRatingPair(ctx, &ride, req.PassengerID); err != nil {
			return err
		}
	}

	changed, err := s.rides.UpdateStatus(ctx, rideID, model.RideStatusInProgress, model.RideStatusCompleted)
	if err != nil {
		return err
	}
	if !changed {
		return model.ErrInvalidTransition
	}
	s.notifyAccepted(ctx, &ride, queue.KindRideEnded, "your ride has ended, please rate your driver")
	return nil
}

// openRatingPair creates both directed rating slots between the driver and
// one passenger. Slots left over from an earlier attempt are skipped;
// anything else fails the call so the caller can retry.
func (s *RideService) openRatingPair(ctx context.Context, ride *model.Ride, passengerID uint64) error {
	slots := []model.RatingRequest{
		{RaterID: ride.DriverID, RatedID: passengerID, RideID: ride.ID, Rating: model.UnratedSentinel},
		{RaterID: passengerID, RatedID: ride.DriverID, RideID: ride.ID, Rating: model.UnratedSentinel},
	}
	for i := range slots {
		if _, err := s.ratings.Create(ctx, &slots[i]); err != nil && !errors.Is(err, repository.ErrDuplicateKey) {
			s.log.Error("open rating slot failed",
				logger.Uint64("ride_id", ride.ID),
				logger.Uint64("rater_id", slots[i].RaterID),
				logger.Error(err))
			return fmt.Errorf("open rating slot: %w", err)
		}
	}
	return nil
}

// notifyAccepted publishes one notification per accepted passenger. Broker
// failures are logged inside the publisher and ignored here.
func (s *RideService) notifyAccepted(ctx context.Context, ride *model.Ride, kind, message string) {
	accepted, err := s.requests.ListByRide(ctx, ride.ID, model.RequestStatusAccepted)
	if err != nil {
		s.log.Error("list accepted passengers failed",
			logger.Uint64("ride_id", ride.ID), logger.Error(err))
		return
	}
	now := s.now()
	for _, req := range accepted {
		ev := queue.NewRideNotificationEvent(kind, ride.ID, req.PassengerID, message, now)
		_ = s.events.Publish(ctx, queue.NotificationQueueName, ev)
	}
}

// SearchParams describes a passenger's ride search. Zero values relax the
// corresponding filter: Seats zero asks for a single seat, a zero
// DepartureAt skips the time window, DepartureDelta zero means the default
// window, and radii of zero skip the location filters.
type SearchParams struct {
	CallerID       uint64
	Seats          int
	DepartureAt    time.Time
	DepartureDelta time.Duration

	Pickup       geo.Point
	PickupRadius float64
	Drop         geo.Point
	DropRadius   float64
}

// SearchRides finds waiting rides matching the parameters. Structural
// predicates (status, seats, ownership, departure window) are pushed into
// SQL; distance predicates run in memory against the calculator, which may
// call out to a route provider.
func (s *RideService) SearchRides(ctx context.Context, p SearchParams) ([]model.Ride, error) {
	if p.Seats == 0 {
		p.Seats = 1
	}
	if p.Seats < 1 {
		return nil, model.ErrInvalidSeatCount
	}

	structural := []search.Specification{
		search.RideStatus{Status: model.RideStatusWaiting},
		search.AvailableSeats{Seats: p.Seats},
		search.NotOwnedBy{UserID: p.CallerID},
	}
	// No target time means no time constraint.
	if !p.DepartureAt.IsZero() {
		structural = append(structural,
			search.NewDepartureWindow(p.DepartureAt, p.DepartureDelta, s.now()))
	}
	q := &search.Query{}
	search.NewAnd(structural...).Apply(q)
	rides, err := s.rides.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	var near []search.Specification
	if p.PickupRadius > 0 {
		near = append(near, search.NearLocation{
			Center: p.Pickup, RadiusKm: p.PickupRadius,
			Field: search.FieldDeparture, Calc: s.calc,
		})
	}
	if p.DropRadius > 0 {
		near = append(near, search.NearLocation{
			Center: p.Drop, RadiusKm: p.DropRadius,
			Field: search.FieldDestination, Calc: s.calc,
		})
	}
	if len(near) == 0 {
		return rides, nil
	}

	spec := search.NewAnd(near...)
	matched := rides[:0]
	for i := range rides {
		ok, err := spec.SatisfiedBy(ctx, &rides[i])
		if err != nil {
			return nil, fmt.Errorf("distance filter: %w", err)
		}
		if ok {
			matched = append(matched, rides[i])
		}
	}
	return matched, nil
}
