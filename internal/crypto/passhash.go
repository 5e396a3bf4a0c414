// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest bcrypt cost accepted for stored password hashes.
const MinCost = 10

// MaxPasswordLen is the number of password bytes bcrypt consumes. Longer
// passwords are cut to this length before hashing and before verification.
const MaxPasswordLen = 72

// HashPassword returns a salted bcrypt hash of password. Costs below MinCost are raised to MinCost.
func HashPassword(password []byte, cost int) (string, error) {
	if cost < MinCost {
		cost = MinCost
	}
	h, err := bcrypt.GenerateFromPassword(clip(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(password []byte, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), clip(password)) == nil
}

func clip(password []byte) []byte {
	if len(password) > MaxPasswordLen {
		return password[:MaxPasswordLen]
	}
	return password
}
