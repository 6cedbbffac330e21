// Package storage defines the persistence slots behind the credential and
// session stores.
package storage

import "time"

// Attributes carries the cookie-style metadata attached to a slot entry.
// Expires is enforced by implementations on read: an expired entry is a miss
// and is removed. Secure and SameSiteStrict have no behavior at this layer;
// they are recorded so a surface translating entries into real cookies can
// honor them.
type Attributes struct {
	Expires        time.Time `json:"expires,omitempty"`
	Secure         bool      `json:"secure,omitempty"`
	SameSiteStrict bool      `json:"same_site_strict,omitempty"`
}

// Expired reports whether the entry is past its expiry at the given instant.
// A zero Expires means the entry does not expire.
func (a Attributes) Expired(now time.Time) bool {
	return !a.Expires.IsZero() && now.After(a.Expires)
}

// Slot is a flat key/value persistence slot. Writes are fire-and-forget:
// implementations do not report errors and callers do not retry, so a failed
// write surfaces only as a later miss.
type Slot interface {
	// Get retrieves an entry. Returns false if the key is absent or the
	// entry has expired.
	Get(key string) (string, bool)
	// Set creates or replaces an entry.
	Set(key string, value string, attrs Attributes)
	// Delete removes an entry. Deleting an absent key is a no-op.
	Delete(key string)
}
