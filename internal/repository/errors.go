// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios: not-found errors are reported distinctly from validation
// errors, and transaction conflicts are transient and may be retried by
// the caller, unlike business-rule rejections.
package repository

import (
	"errors"
	"strings"
)

// ErrRideNotFound is returned when a ride id does not exist.
var ErrRideNotFound = errors.New("ride not found")

// ErrRequestNotFound is returned when a join request id does not exist.
var ErrRequestNotFound = errors.New("join request not found")

// ErrRatingNotFound is returned when a rating slot id does not exist.
var ErrRatingNotFound = errors.New("rating request not found")

// ErrUserNotFound is returned when a user id or email does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrCodeNotFound is returned when no verification code is on file for an
// email.
var ErrCodeNotFound = errors.New("verification code not found")

// ErrEmailExists is returned when registering an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateKey is returned when an insert violates a unique constraint
// other than the users email, for example a second join request for the
// same (ride, passenger) pair or a regenerated rating pair.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrTxConflict is returned when the database reports a deadlock or lock
// wait timeout. The write was rolled back; the caller may retry the whole
// operation.
var ErrTxConflict = errors.New("transaction conflict, retry")

// isDuplicateKey reports whether err is a MySQL 1062 duplicate-entry error.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// isLockConflict reports whether err is a MySQL deadlock (1213) or lock
// wait timeout (1205).
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1213") || strings.Contains(msg, "1205")
}
