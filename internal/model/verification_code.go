package model

import "time"

// CodeTTL is how long a verification code stays valid after being sent.
const CodeTTL = 3 * time.Minute

// VerificationCode is a one-time code issued for password recovery or
// account approval, stored in the `verification_codes` table keyed by
// email. Only the bcrypt hash of the code is stored; resending replaces the
// row in place so at most one code is live per email.
//
// Fields:
//  Email    – primary key; the address the code was mailed to.
//  CodeHash – bcrypt hash of the 6-digit code.
//  SentAt   – when the code was issued (UTC).
type VerificationCode struct {
	Email    string    // verification_codes.email
	CodeHash string    // verification_codes.code_hash
	SentAt   time.Time // verification_codes.sent_at
}

// Expired reports whether the code's validity window has passed.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.Sub(v.SentAt) > CodeTTL
}
