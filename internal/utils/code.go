package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode returns a uniformly random numeric code of the given length,
// left-padded with zeros ("000042" is a valid 6-digit code). Codes are
// short-lived bearer secrets, so this draws from crypto/rand.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}

	// Uniform in [0, 10^length).
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
