package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roadshare/carpool-backend/internal/model"
)

// RatingRepo provides data access to the rating_requests table. The unique
// key over (rater_id, rated_id, ride_id) keeps end-of-ride pair generation
// idempotent: a duplicate insert comes back as ErrDuplicateKey and the
// caller treats it as already processed.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Create inserts one unrated slot.
func (r *RatingRepo) Create(ctx context.Context, rr *model.RatingRequest) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO rating_requests (rater_id, rated_id, ride_id, rating, comments)
		 VALUES (?,?,?,?,'')`,
		rr.RaterID, rr.RatedID, rr.RideID, model.UnratedSentinel)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateKey
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one rating slot.
func (r *RatingRepo) GetByID(ctx context.Context, id uint64) (model.RatingRequest, error) {
	var rr model.RatingRequest
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, rater_id, rated_id, ride_id, rating, comments
		 FROM rating_requests WHERE id=? LIMIT 1`, id).
		Scan(&rr.ID, &rr.RaterID, &rr.RatedID, &rr.RideID, &rr.Rating, &rr.Comments)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RatingRequest{}, ErrRatingNotFound
	}
	return rr, err
}

// Rate writes the rating value and comment into a still-unrated slot. The
// WHERE clause re-checks the sentinel so a second submission loses even if
// it raced the first; zero rows maps to ErrAlreadyRated.
func (r *RatingRepo) Rate(ctx context.Context, id uint64, rating int, comments string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE rating_requests SET rating=?, comments=? WHERE id=? AND rating=?`,
		rating, comments, id, model.UnratedSentinel)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrAlreadyRated
	}
	return nil
}

// Delete removes a slot while still unrated.
func (r *RatingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM rating_requests WHERE id=? AND rating=?`, id, model.UnratedSentinel)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrAlreadyRated
	}
	return nil
}

// AverageFor returns the mean of all submitted ratings where the user is
// rated, or the neutral default when none exist.
func (r *RatingRepo) AverageFor(ctx context.Context, userID uint64) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		`SELECT AVG(rating) FROM rating_requests WHERE rated_id=? AND rating >= 0`,
		userID).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return model.DefaultRating, nil
	}
	return avg.Float64, nil
}

// Comment is a submitted rating joined with the rater's public profile
// fields, returned when listing what was said about a user.
type Comment struct {
	RaterFirstName string `json:"rater_first_name"`
	RaterLastName  string `json:"rater_last_name"`
	RaterApproved  bool   `json:"rater_approved"`
	Rating         int    `json:"rating"`
	Comments       string `json:"comments"`
}

// CommentsFor returns all submitted ratings about a user, with rater names.
func (r *RatingRepo) CommentsFor(ctx context.Context, userID uint64) ([]Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.first_name, u.last_name, u.approved, rr.rating, rr.comments
		 FROM rating_requests rr
		 JOIN users u ON u.id = rr.rater_id
		 WHERE rr.rated_id=? AND rr.rating >= 0`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.RaterFirstName, &c.RaterLastName, &c.RaterApproved, &c.Rating, &c.Comments); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PendingSlot is an unrated slot owed by a user, joined with the rated
// user's public profile fields.
type PendingSlot struct {
	RatingID       uint64 `json:"rating_id"`
	RideID         uint64 `json:"ride_id"`
	RatedFirstName string `json:"rated_first_name"`
	RatedLastName  string `json:"rated_last_name"`
	RatedApproved  bool   `json:"rated_approved"`
}

// PendingFor returns the slots a user still has to fill in, optionally
// narrowed to one ride.
func (r *RatingRepo) PendingFor(ctx context.Context, userID uint64, rideID uint64) ([]PendingSlot, error) {
	query := `SELECT rr.id, rr.ride_id, u.first_name, u.last_name, u.approved
		 FROM rating_requests rr
		 JOIN users u ON u.id = rr.rated_id
		 WHERE rr.rater_id=? AND rr.rating=?`
	args := []any{userID, model.UnratedSentinel}
	if rideID != 0 {
		query += ` AND rr.ride_id=?`
		args = append(args, rideID)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []PendingSlot{}
	for rows.Next() {
		var p PendingSlot
		if err := rows.Scan(&p.RatingID, &p.RideID, &p.RatedFirstName, &p.RatedLastName, &p.RatedApproved); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
