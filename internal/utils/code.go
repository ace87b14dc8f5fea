package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeDigits is the length of generated verification codes.
const codeDigits = 6

// NewVerificationCode returns a zero-padded numeric code drawn from a
// cryptographically secure source.
func NewVerificationCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
