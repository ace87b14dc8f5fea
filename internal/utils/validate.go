package utils

import (
	"errors"
	"regexp"
	"time"
	"unicode"
)

// Account field validation errors.
var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrWeakPassword    = errors.New("password must be at least 8 characters with an uppercase letter, a lowercase letter and a digit")
	ErrInvalidPhone    = errors.New("invalid phone number format")
	ErrInvalidBirthday = errors.New("invalid birthday, expected YYYY-MM-DD")
	ErrAgeOutOfRange   = errors.New("age must be between 16 and 120")
)

const (
	minAge = 16
	maxAge = 120

	// BirthdayLayout is the accepted wire format for birthdays.
	BirthdayLayout = "2006-01-02"
)

var (
	emailPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^(\+\d{1,3}[\s-]?)?((\d{3}[\s-]?)|(\d{2}[\s-]?\d{2}[\s-]?))\d{3}[\s-]?\d{4}$`)
)

// ValidateEmail checks the address shape, case-insensitively.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword requires at least 8 characters with an uppercase letter,
// a lowercase letter and a digit.
func ValidatePassword(password string) error {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len(password) < 8 || !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}

// ValidatePhoneNumber accepts local and international formats with optional
// space or dash separators.
func ValidatePhoneNumber(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ParseBirthday parses a YYYY-MM-DD birthday and checks the implied age
// against the allowed range.
func ParseBirthday(value string, now time.Time) (time.Time, error) {
	birthday, err := time.Parse(BirthdayLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidBirthday
	}
	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	if age < minAge || age > maxAge {
		return time.Time{}, ErrAgeOutOfRange
	}
	return birthday, nil
}
