package credential

import "errors"

var (
	// ErrDuplicateEmail indicates the email collides case-insensitively with
	// another record.
	ErrDuplicateEmail = errors.New("email address is already in use")
	// ErrCorruptCredential indicates a stored credential hash is malformed.
	// It is distinct from a mismatch, which is not an error.
	ErrCorruptCredential = errors.New("stored credential hash is malformed")
)
