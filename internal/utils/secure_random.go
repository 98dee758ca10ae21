package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Letters and digits that cannot be misread when a password is dictated over the phone.
const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

// GenerateTemporaryPassword returns a random password of length characters drawn from
// an unambiguous alphabet. It is handed to a newly enrolled client once.
func GenerateTemporaryPassword(length int) (string, error) {
	if length < MinPasswordLength {
		return "", fmt.Errorf("temporary password length must be at least %d", MinPasswordLength)
	}
	limit := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		out[i] = temporaryPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
