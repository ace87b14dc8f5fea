package utils

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"user@example.com", false},
		{"first.last+tag@sub.domain.io", false},
		{"UPPER@EXAMPLE.COM", false},
		{"", true},
		{"no-at-sign", true},
		{"user@", true},
		{"@example.com", true},
		{"user@domain", true},
		{"user@domain.c", true},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", "Passw0rd", false},
		{"valid long", "CorrectHorse1", false},
		{"too short", "Pw1shor", true},
		{"no uppercase", "passw0rd", true},
		{"no lowercase", "PASSW0RD", true},
		{"no digit", "Password", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0541234567", false},
		{"054-123-4567", false},
		{"+972 54 123 4567", false},
		{"1234567890", false},
		{"12345", true},
		{"phone", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidatePhoneNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePhoneNumber(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestParseBirthday(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"adult", "1990-06-15", nil},
		{"exactly sixteen", "2010-03-10", nil},
		{"too young by a day", "2010-03-11", ErrAgeOutOfRange},
		{"too old", "1900-01-01", ErrAgeOutOfRange},
		{"bad format", "15/06/1990", ErrInvalidBirthday},
		{"empty", "", ErrInvalidBirthday},
		{"not a date", "yesterday", ErrInvalidBirthday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBirthday(tt.in, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseBirthday(%q) = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestNewVerificationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := NewVerificationCode()
		if err != nil {
			t.Fatalf("NewVerificationCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = true
	}
	// 20 draws from a million values colliding every time would mean the
	// generator is broken.
	if len(seen) < 2 {
		t.Error("generator returned the same code on every draw")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Passw0rd", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "Passw0rd") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
