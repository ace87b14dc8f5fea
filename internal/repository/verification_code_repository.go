package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/roadshare/carpool-backend/internal/model"
)

// VerificationCodeRepo provides data access to the verification_codes
// table, keyed by email. Upsert keeps at most one live code per address and
// is atomic, so a resend racing a verify never leaves two codes behind.
type VerificationCodeRepo struct{ DB *sql.DB }

func NewVerificationCodeRepo(db *sql.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{DB: db}
}

// Upsert stores the hashed code for the email, replacing any prior code in
// the same statement.
func (r *VerificationCodeRepo) Upsert(ctx context.Context, code *model.VerificationCode) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO verification_codes (email, code_hash, sent_at)
		 VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE code_hash=VALUES(code_hash), sent_at=VALUES(sent_at)`,
		code.Email, code.CodeHash, code.SentAt.UTC())
	return err
}

// Get fetches the live code for an email.
func (r *VerificationCodeRepo) Get(ctx context.Context, email string) (model.VerificationCode, error) {
	var v model.VerificationCode
	err := r.DB.QueryRowContext(ctx,
		`SELECT email, code_hash, sent_at FROM verification_codes WHERE email=? LIMIT 1`,
		email).Scan(&v.Email, &v.CodeHash, &v.SentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VerificationCode{}, ErrCodeNotFound
	}
	return v, err
}

// Delete consumes the code for an email. Called on every verify attempt,
// successful or not: codes are single-use.
func (r *VerificationCodeRepo) Delete(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE email=?`, email)
	return err
}

// DeleteExpired purges codes older than the validity window and returns
// how many were removed. Idempotent.
func (r *VerificationCodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE sent_at < ?`,
		now.Add(-model.CodeTTL).UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
