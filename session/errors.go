package session

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// credential. The two causes are deliberately merged so login failures
	// cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired indicates the persisted token is older than the TTL.
	ErrSessionExpired = errors.New("session expired")
	// ErrStaleSession indicates the token is valid but the user it references
	// no longer exists.
	ErrStaleSession = errors.New("stale session")
	// ErrMalformedToken indicates the persisted token fails to decode.
	ErrMalformedToken = errors.New("malformed session token")
)
