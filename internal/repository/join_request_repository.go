package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/roadshare/carpool-backend/internal/model"
)

// JoinRequestRepo provides data access to the join_requests table. The
// unique key over (ride_id, passenger_id) backs the one-request-per-pair
// invariant; inserts that trip it surface as ErrDuplicateKey.
type JoinRequestRepo struct{ DB *sql.DB }

func NewJoinRequestRepo(db *sql.DB) *JoinRequestRepo { return &JoinRequestRepo{DB: db} }

const requestColumns = `id, ride_id, passenger_id, status, requested_seats, created_at`

func scanRequest(row rowScanner) (model.JoinRequest, error) {
	var j model.JoinRequest
	err := row.Scan(&j.ID, &j.RideID, &j.PassengerID, &j.Status, &j.RequestedSeats, &j.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.JoinRequest{}, ErrRequestNotFound
	}
	return j, err
}

// CreateTx inserts a pending request inside tx and returns its ID. The
// caller holds the ride row lock, so the capacity check it performed is
// still valid when this insert commits.
func (r *JoinRequestRepo) CreateTx(ctx context.Context, tx *sql.Tx, req *model.JoinRequest) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO join_requests (ride_id, passenger_id, status, requested_seats)
		 VALUES (?,?,?,?)`,
		req.RideID, req.PassengerID, model.RequestStatusPending, req.RequestedSeats)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateKey
		}
		if isLockConflict(err) {
			return 0, ErrTxConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one request.
func (r *JoinRequestRepo) GetByID(ctx context.Context, id uint64) (model.JoinRequest, error) {
	return scanRequest(r.DB.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM join_requests WHERE id=? LIMIT 1`, id))
}

// GetTx fetches one request inside tx.
func (r *JoinRequestRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.JoinRequest, error) {
	req, err := scanRequest(tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM join_requests WHERE id=? LIMIT 1`, id))
	if err != nil && isLockConflict(err) {
		return model.JoinRequest{}, ErrTxConflict
	}
	return req, err
}

// ListByRide returns requests on a ride, optionally narrowed to one status.
func (r *JoinRequestRepo) ListByRide(ctx context.Context, rideID uint64, status string) ([]model.JoinRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM join_requests WHERE ride_id=?`
	args := []any{rideID}
	if status != "" {
		query += ` AND status=?`
		args = append(args, status)
	}
	rows, err := r.DB.QueryContext(ctx, query+` ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListByPassenger returns a passenger's requests, newest first.
func (r *JoinRequestRepo) ListByPassenger(ctx context.Context, passengerID uint64) ([]model.JoinRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM join_requests WHERE passenger_id=? ORDER BY created_at DESC`,
		passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows *sql.Rows) ([]model.JoinRequest, error) {
	out := []model.JoinRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Exists reports whether any request, in any status, exists for the pair.
func (r *JoinRequestRepo) Exists(ctx context.Context, rideID, passengerID uint64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM join_requests WHERE ride_id=? AND passenger_id=?)`,
		rideID, passengerID).Scan(&exists)
	return exists, err
}

// UpdateStatusTx flips a pending request to accepted or rejected inside tx.
// The WHERE clause re-checks pending so a lost race surfaces as zero rows.
func (r *JoinRequestRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE join_requests SET status=? WHERE id=? AND status=?`,
		to, id, model.RequestStatusPending)
	if err != nil {
		if isLockConflict(err) {
			return ErrTxConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrRequestNotPending
	}
	return nil
}

// DeleteUnacceptedForPastRides purges requests that were never accepted on
// rides whose departure has passed. Idempotent.
func (r *JoinRequestRepo) DeleteUnacceptedForPastRides(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE jr FROM join_requests jr
		 JOIN rides r ON r.id = jr.ride_id
		 WHERE jr.status <> ? AND r.departure_at < ?`,
		model.RequestStatusAccepted, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
