package credential

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor applied to every record, so verification
// cost is uniform across accounts.
const hashCost = 10

// hashPrefixes are the bcrypt format markers used to tell an already-hashed
// credential apart from a raw one in update flows.
var hashPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// IsHashed reports whether s is already in stored hash form.
func IsHashed(s string) bool {
	for _, p := range hashPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Hash derives a salted one-way hash of the raw credential. This is the
// store's only expensive operation; everything else completes synchronously.
func Hash(rawCredential string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(rawCredential), hashCost)
	if err != nil {
		return "", fmt.Errorf("hashing credential: %w", err)
	}
	return string(h), nil
}

// Verify compares a raw credential against a stored hash. A mismatch is a
// false result, not an error; only a malformed stored hash fails, with
// ErrCorruptCredential. The comparison's timing depends on the work factor,
// not on how close the candidate is to the real credential.
func Verify(rawCredential, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawCredential))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCorruptCredential, err)
	}
}
