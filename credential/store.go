// Package credential owns the canonical user record set: hashing,
// verification, and case-insensitive email uniqueness.
package credential

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jmcleod/gatehouse/internal/util"
	"github.com/jmcleod/gatehouse/storage"
)

// usersKey is the slot key holding the serialized record set.
const usersKey = "users"

// Store holds the user records and persists them through a storage.Slot.
// Construct one per process (or per test) and pass it by reference; there is
// no ambient singleton.
type Store struct {
	slot   storage.Slot
	logger *slog.Logger

	mu    sync.RWMutex
	users []UserRecord
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the structured logger. Defaults to slog.Default.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store backed by the given slot, loading any record set a
// previous instance persisted there.
func NewStore(slot storage.Slot, opts ...StoreOption) *Store {
	s := &Store{slot: slot, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "credential")
	s.load()
	return s
}

func (s *Store) load() {
	raw, ok := s.slot.Get(usersKey)
	if !ok {
		return
	}
	var users []UserRecord
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		s.logger.Warn("discarding unreadable user snapshot", "error", err)
		return
	}
	s.users = users
}

// saveLocked persists the record set. Writes are fire-and-forget per the
// slot contract.
func (s *Store) saveLocked() {
	data, err := json.Marshal(s.users)
	if err != nil {
		s.logger.Warn("serializing user records", "error", err)
		return
	}
	s.slot.Set(usersKey, string(data), storage.Attributes{})
}

// Add hashes the candidate's credential and appends a new Active record with
// the next free id. Fails with ErrDuplicateEmail if the email matches an
// existing record case-insensitively.
func (s *Store) Add(c Candidate) error {
	if s.IsEmailTaken(c.Email, 0) {
		return ErrDuplicateEmail
	}
	hash, err := Hash(c.RawCredential)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the lock: hashing suspends, and another writer may have
	// claimed the email in the meantime.
	if s.emailTakenLocked(c.Email, 0) {
		return ErrDuplicateEmail
	}
	s.users = append(s.users, UserRecord{
		ID:             s.nextIDLocked(),
		Name:           c.Name,
		Email:          c.Email,
		CredentialHash: hash,
		Role:           c.Role,
		Status:         StatusActive,
	})
	s.saveLocked()
	return nil
}

// Update replaces the record with rec's id. If rec.CredentialHash is not in
// stored hash form it is treated as a new raw credential and re-hashed, so
// edit flows can pass an unchanged hash straight through. Fails with
// ErrDuplicateEmail when the email collides with a different record. An
// unknown id leaves the store untouched.
func (s *Store) Update(rec UserRecord) error {
	if s.IsEmailTaken(rec.Email, rec.ID) {
		return ErrDuplicateEmail
	}
	if !IsHashed(rec.CredentialHash) {
		hash, err := Hash(rec.CredentialHash)
		if err != nil {
			return err
		}
		rec.CredentialHash = hash
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTakenLocked(rec.Email, rec.ID) {
		return ErrDuplicateEmail
	}
	for i := range s.users {
		if s.users[i].ID == rec.ID {
			s.users[i] = rec
			s.saveLocked()
			return nil
		}
	}
	return nil
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.saveLocked()
			return
		}
	}
}

// List returns a copy of the full record set. Order is not part of the
// contract; callers filter and sort independently.
func (s *Store) List() []UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UserRecord, len(s.users))
	copy(out, s.users)
	return out
}

// IsEmailTaken reports whether any record other than excludeID already uses
// the email, case-insensitively. Pass 0 to exclude nothing; ids are assigned
// from 1.
func (s *Store) IsEmailTaken(email string, excludeID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailTakenLocked(email, excludeID)
}

func (s *Store) emailTakenLocked(email string, excludeID int) bool {
	folded := util.FoldCase(email)
	for _, u := range s.users {
		if u.ID != excludeID && util.FoldCase(u.Email) == folded {
			return true
		}
	}
	return false
}

// FindByEmail returns the record matching the email case-insensitively.
func (s *Store) FindByEmail(email string) (UserRecord, bool) {
	folded := util.FoldCase(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if util.FoldCase(u.Email) == folded {
			return u, true
		}
	}
	return UserRecord{}, false
}

// FindByID returns the record with the given id.
func (s *Store) FindByID(id int) (UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return UserRecord{}, false
}

// Verify compares a raw credential against a stored hash. See Verify.
func (s *Store) Verify(rawCredential, hash string) (bool, error) {
	return Verify(rawCredential, hash)
}

// nextIDLocked returns max existing id + 1, or 1 for an empty store. Ids are
// never reused while their record lives, but a removed maximum id can be.
func (s *Store) nextIDLocked() int {
	max := 0
	for _, u := range s.users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}
