package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/queue"
	"github.com/roadshare/carpool-backend/internal/repository"
	"github.com/roadshare/carpool-backend/pkg/logger"
)

// RequestService covers submitting and deciding join requests. Both paths
// run inside a transaction that locks the ride row, so the seat capacity
// invariant holds under concurrent accepts.
type RequestService struct {
	db       *sql.DB
	rides    *repository.RideRepo
	requests *repository.JoinRequestRepo
	events   EventPublisher
	log      logger.Logger
	now      func() time.Time
}

// NewRequestService wires a request service over the shared pool.
func NewRequestService(db *sql.DB, rides *repository.RideRepo, requests *repository.JoinRequestRepo,
	events EventPublisher, log logger.Logger) *RequestService {
	return &RequestService{
		db:       db,
		rides:    rides,
		requests: requests,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *RequestService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Submit files a join request for seats on a ride. The ride must still be
// waiting with its departure in the future, the passenger must not be the
// driver, and one request per (ride, passenger) pair is allowed ever.
func (s *RequestService) Submit(ctx context.Context, passengerID, rideID uint64, seats int) (model.JoinRequest, error) {
	req := model.JoinRequest{
		RideID:         rideID,
		PassengerID:    passengerID,
		Status:         model.RequestStatusPending,
		RequestedSeats: seats,
	}
	var driverID uint64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ride, err := s.rides.GetForUpdateTx(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if ride.Status != model.RideStatusWaiting {
			return model.ErrRideNotWaiting
		}
		if !s.now().Before(ride.DepartureAt) {
			return model.ErrDepartureElapsed
		}
		if err := req.ValidateSubmit(&ride); err != nil {
			return err
		}
		id, err := s.requests.CreateTx(ctx, tx, &req)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return model.ErrDuplicateRequest
		}
		if err != nil {
			return err
		}
		req.ID = id
		driverID = ride.DriverID
		return nil
	})
	if err != nil {
		return model.JoinRequest{}, err
	}

	ev := queue.NewRideNotificationEvent(queue.KindRequestReceived, rideID, driverID,
		"a passenger requested to join your ride", s.now())
	_ = s.events.Publish(ctx, queue.NotificationQueueName, ev)
	return req, nil
}

// Accept grants a pending request its seats. The ride row is locked for the
// whole decision, and the seat update carries its own capacity guard, so
// two concurrent accepts can never oversell the ride.
func (s *RequestService) Accept(ctx context.Context, driverID, rideID, requestID uint64) error {
	var passengerID uint64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ride, err := s.rides.GetForUpdateTx(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if err := ride.CanManageRequests(driverID, s.now()); err != nil {
			return err
		}
		req, err := s.requests.GetTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := req.CanDecide(rideID); err != nil {
			return err
		}
		if !ride.CanSeat(req.RequestedSeats) {
			return model.ErrNoAvailableSeats
		}
		if err := s.requests.UpdateStatusTx(ctx, tx, requestID, model.RequestStatusAccepted); err != nil {
			return err
		}
		if err := s.rides.AddConfirmedTx(ctx, tx, rideID, req.RequestedSeats); err != nil {
			return err
		}
		passengerID = req.PassengerID
		return nil
	})
	if err != nil {
		return err
	}

	ev := queue.NewRideNotificationEvent(queue.KindRequestAccepted, rideID, passengerID,
		"your join request was accepted", s.now())
	_ = s.events.Publish(ctx, queue.NotificationQueueName, ev)
	return nil
}

// Reject declines a pending request. Seats are untouched.
func (s *RequestService) Reject(ctx context.Context, driverID, rideID, requestID uint64) error {
	var passengerID uint64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ride, err := s.rides.GetForUpdateTx(ctx, tx, rideID)
		if err != nil {
			return err
		}
		if err := ride.CanManageRequests(driverID, s.now()); err != nil {
			return err
		}
		req, err := s.requests.GetTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := req.CanDecide(rideID); err != nil {
			return err
		}
		if err := s.requests.UpdateStatusTx(ctx, tx, requestID, model.RequestStatusRejected); err != nil {
			return err
		}
		passengerID = req.PassengerID
		return nil
	})
	if err != nil {
		return err
	}

	ev := queue.NewRideNotificationEvent(queue.KindRequestRejected, rideID, passengerID,
		"your join request was rejected", s.now())
	_ = s.events.Publish(ctx, queue.NotificationQueueName, ev)
	return nil
}

// ListForRide returns a ride's join requests to its driver, optionally
// filtered by status.
func (s *RequestService) ListForRide(ctx context.Context, driverID, rideID uint64, status string) ([]model.JoinRequest, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, model.ErrNotRideOwner
	}
	return s.requests.ListByRide(ctx, rideID, status)
}

// ListMine returns all join requests the passenger ever filed.
func (s *RequestService) ListMine(ctx context.Context, passengerID uint64) ([]model.JoinRequest, error) {
	return s.requests.ListByPassenger(ctx, passengerID)
}
