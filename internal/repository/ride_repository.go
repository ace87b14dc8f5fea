package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/roadshare/carpool-backend/internal/model"
	"github.com/roadshare/carpool-backend/internal/search"
)

// RideRepo provides data access to the rides table. All timestamps are
// stored and compared in UTC. Mutations that must hold the seat-capacity
// invariant run through the *Tx methods inside a caller-owned transaction.
type RideRepo struct{ DB *sql.DB }

func NewRideRepo(db *sql.DB) *RideRepo { return &RideRepo{DB: db} }

const rideColumns = `id, driver_id, status, departure_location, pickup_radius,
	destination, drop_radius, departure_at, available_seats,
	confirmed_passengers, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (model.Ride, error) {
	var r model.Ride
	err := row.Scan(&r.ID, &r.DriverID, &r.Status, &r.DepartureLocation, &r.PickupRadius,
		&r.Destination, &r.DropRadius, &r.DepartureAt, &r.AvailableSeats,
		&r.ConfirmedPassengers, &r.Notes, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ride{}, ErrRideNotFound
	}
	return r, err
}

// Create inserts a new ride and returns its ID.
func (r *RideRepo) Create(ctx context.Context, ride *model.Ride) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO rides (driver_id, status, departure_location, pickup_radius,
		   destination, drop_radius, departure_at, available_seats, confirmed_passengers, notes)
		 VALUES (?,?,?,?,?,?,?,?,0,?)`,
		ride.DriverID, model.RideStatusWaiting, ride.DepartureLocation, ride.PickupRadius,
		ride.Destination, ride.DropRadius, ride.DepartureAt.UTC(), ride.AvailableSeats, ride.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one ride.
func (r *RideRepo) GetByID(ctx context.Context, id uint64) (model.Ride, error) {
	return scanRide(r.DB.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id=? LIMIT 1`, id))
}

// GetForUpdateTx fetches one ride with a row lock inside tx. Concurrent
// accepts against the same ride serialize on this lock so the capacity
// check never reads a stale confirmed count.
func (r *RideRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Ride, error) {
	ride, err := scanRide(tx.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id=? LIMIT 1 FOR UPDATE`, id))
	if err != nil && isLockConflict(err) {
		return model.Ride{}, ErrTxConflict
	}
	return ride, err
}

// ListByDriver returns all rides posted by a driver, soonest departure
// first.
func (r *RideRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Ride, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE driver_id=? ORDER BY departure_at ASC`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

// Search returns the rides matching the push-down conditions accumulated in
// q, soonest departure first. Location predicates filter the returned slice
// afterwards in the service.
func (r *RideRepo) Search(ctx context.Context, q *search.Query) ([]model.Ride, error) {
	cond := "1=1"
	if len(q.Where) > 0 {
		cond = strings.Join(q.Where, " AND ")
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE `+cond+` ORDER BY departure_at ASC`, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func collectRides(rows *sql.Rows) ([]model.Ride, error) {
	out := []model.Ride{}
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ride)
	}
	return out, rows.Err()
}

// UpdateDetails overwrites the editable ride fields. The service validates
// the new values and the departure cutoff before calling this.
func (r *RideRepo) UpdateDetails(ctx context.Context, ride *model.Ride) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE rides SET departure_location=?, pickup_radius=?, destination=?,
		   drop_radius=?, departure_at=?, available_seats=?, notes=?
		 WHERE id=?`,
		ride.DepartureLocation, ride.PickupRadius, ride.Destination,
		ride.DropRadius, ride.DepartureAt.UTC(), ride.AvailableSeats, ride.Notes, ride.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRideNotFound
	}
	return nil
}

// UpdateStatus moves a ride from one status to another. The WHERE clause
// re-checks the source status so a concurrent transition loses cleanly; the
// caller maps a zero row count to a state conflict.
func (r *RideRepo) UpdateStatus(ctx context.Context, id uint64, from, to string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE rides SET status=? WHERE id=? AND status=?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// AddConfirmedTx raises the confirmed passenger count inside tx. The guard
// in the WHERE clause is the last line of defence for the capacity
// invariant; the service checks it first against the locked row.
func (r *RideRepo) AddConfirmedTx(ctx context.Context, tx *sql.Tx, id uint64, seats int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE rides SET confirmed_passengers = confirmed_passengers + ?
		 WHERE id=? AND confirmed_passengers + ? <= available_seats`,
		seats, id, seats)
	if err != nil {
		if isLockConflict(err) {
			return ErrTxConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNoAvailableSeats
	}
	return nil
}

// HasOverlapping reports whether the driver has a non-completed ride whose
// departure falls within the double-booking window around departureAt. An
// optional excludeID skips the ride being edited.
func (r *RideRepo) HasOverlapping(ctx context.Context, driverID uint64, departureAt time.Time, excludeID uint64) (bool, error) {
	lo := departureAt.Add(-model.ScheduleWindow).UTC()
	hi := departureAt.Add(model.ScheduleWindow).UTC()
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM rides
		   WHERE driver_id=? AND id<>? AND status<>?
		     AND departure_at BETWEEN ? AND ?
		 )`,
		driverID, excludeID, model.RideStatusCompleted, lo, hi).Scan(&exists)
	return exists, err
}

// DeleteStaleWaiting removes rides still waiting past their departure time
// and returns how many were purged. Idempotent; cascades to their join
// requests via the foreign key.
func (r *RideRepo) DeleteStaleWaiting(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM rides WHERE status=? AND departure_at < ?`,
		model.RideStatusWaiting, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
