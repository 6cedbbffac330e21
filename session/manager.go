// Package session owns the current login session: the short-lived persisted
// token that represents it and the denormalized snapshot of the signed-in
// user.
package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jmcleod/gatehouse/credential"
	"github.com/jmcleod/gatehouse/storage"
)

const (
	// TokenKey is the cookie-equivalent slot key holding the encoded token.
	TokenKey = "auth_token"
	// stateKey holds the serialized manager state for fast in-tab reload. It
	// is independent of the token: clearing it alone does not invalidate the
	// session, because rehydration can rebuild the state from the token.
	stateKey = "auth-storage"
	// DefaultTTL bounds both the token slot entry and the token's effective
	// age at rehydration.
	DefaultTTL = 7 * 24 * time.Hour
)

// CredentialSource is the slice of the credential store the manager consults.
type CredentialSource interface {
	FindByEmail(email string) (credential.UserRecord, bool)
	FindByID(id int) (credential.UserRecord, bool)
	Verify(rawCredential, hash string) (bool, error)
}

// Snapshot is a denormalized copy of a user record taken at login or
// rehydration. It is not kept in sync with later edits to the record; the
// staleness window lasts until the next rehydration, by design.
type Snapshot struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// persistedState mirrors the fast-path state slot layout.
type persistedState struct {
	User            *Snapshot `json:"user"`
	IsAuthenticated bool      `json:"isAuthenticated"`
}

// Manager issues, persists, rehydrates, and invalidates login sessions.
// Construct one per process and hand it to consumers by reference.
//
// Overlapping Login calls resolve last-write-wins: verification runs outside
// the state lock, so whichever call's verification finishes last determines
// the final session. Callers wanting serialized logins must queue them.
type Manager struct {
	creds  CredentialSource
	tokens storage.Slot // cookie-equivalent, survives restarts
	state  storage.Slot // tab-scoped fast path
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu            sync.RWMutex
	user          *Snapshot
	authenticated bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides the 7-day session lifetime.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		m.ttl = d
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager over the given credential source and slots,
// restoring any fast-path state a previous instance left in the state slot.
func NewManager(creds CredentialSource, tokens, state storage.Slot, opts ...Option) *Manager {
	m := &Manager{
		creds:  creds,
		tokens: tokens,
		state:  state,
		logger: slog.Default(),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")
	m.restore()
	return m
}

// restore reloads the fast-path snapshot. An unreadable entry is discarded;
// the token slot remains the source of truth for rehydration.
func (m *Manager) restore() {
	raw, ok := m.state.Get(stateKey)
	if !ok {
		return
	}
	var ps persistedState
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		m.logger.Warn("discarding unreadable session state", "error", err)
		m.state.Delete(stateKey)
		return
	}
	m.user = ps.User
	m.authenticated = ps.IsAuthenticated && ps.User != nil
}

// Login authenticates the email and raw credential against the credential
// store and, on success, commits a new session: a fresh token in the token
// slot and a snapshot of the matched record. An unknown email and a wrong
// credential both fail with ErrInvalidCredentials. A corrupt stored hash is
// surfaced as-is, not treated as a mismatch.
//
// No session state is mutated until verification has resolved, so a failed
// login never leaves partial session state behind.
func (m *Manager) Login(email, rawCredential string) error {
	rec, ok := m.creds.FindByEmail(email)
	if !ok {
		return ErrInvalidCredentials
	}
	valid, err := m.creds.Verify(rawCredential, rec.CredentialHash)
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidCredentials
	}

	now := m.now()
	tok := NewToken(rec.ID, rec.Email, now)
	m.tokens.Set(TokenKey, tok.Encode(), storage.Attributes{
		Expires:        now.Add(m.ttl),
		Secure:         true,
		SameSiteStrict: true,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitLocked(rec)
	return nil
}

// Logout deletes the persisted token and clears the session. Logging out when
// already anonymous is a no-op; Logout always succeeds.
func (m *Manager) Logout() {
	m.tokens.Delete(TokenKey)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

// IsAuthenticated reports the in-memory flag without touching the persisted
// token.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Session returns the current snapshot, if any.
func (m *Manager) Session() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return Snapshot{}, false
	}
	return *m.user, true
}

// CheckAuth reports whether the visitor is authenticated, rehydrating from
// the persisted token when needed. It never fails: a malformed, expired, or
// stale token degrades to false and the offending token is deleted, so a
// corrupted artifact cannot strand the caller. The rejection reason is
// logged and available through Rehydrate.
func (m *Manager) CheckAuth() bool {
	ok, err := m.Rehydrate()
	if err != nil {
		m.logger.Info("rehydration rejected", "reason", err)
	}
	return ok
}

// Rehydrate is CheckAuth with the rejection reason: false may be paired with
// ErrMalformedToken, ErrSessionExpired, or ErrStaleSession. A live session
// returns true immediately without re-reading the token, so repeated checks
// never reset a session's issue time.
//
// Identity is always re-resolved from the live credential store, never from
// the fields embedded in the token, so a renamed or role-changed user is
// reflected on every fresh rehydration.
func (m *Manager) Rehydrate() (bool, error) {
	m.mu.RLock()
	authenticated := m.authenticated
	m.mu.RUnlock()
	if authenticated {
		return true, nil
	}

	raw, ok := m.tokens.Get(TokenKey)
	if !ok {
		return false, nil
	}

	tok, err := DecodeToken(raw)
	if err != nil {
		m.tokens.Delete(TokenKey)
		return false, err
	}
	if tok.Age(m.now()) > m.ttl {
		m.tokens.Delete(TokenKey)
		m.mu.Lock()
		m.clearLocked()
		m.mu.Unlock()
		return false, ErrSessionExpired
	}
	rec, ok := m.creds.FindByID(tok.UserID)
	if !ok {
		m.tokens.Delete(TokenKey)
		m.mu.Lock()
		m.clearLocked()
		m.mu.Unlock()
		return false, ErrStaleSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitLocked(rec)
	return true, nil
}

func (m *Manager) commitLocked(rec credential.UserRecord) {
	m.user = &Snapshot{
		UserID: rec.ID,
		Email:  rec.Email,
		Name:   rec.Name,
		Role:   string(rec.Role),
		Status: string(rec.Status),
	}
	m.authenticated = true
	m.saveStateLocked()
}

func (m *Manager) clearLocked() {
	m.user = nil
	m.authenticated = false
	m.saveStateLocked()
}

// saveStateLocked persists the fast-path snapshot. Fire-and-forget per the
// slot contract.
func (m *Manager) saveStateLocked() {
	data, err := json.Marshal(persistedState{User: m.user, IsAuthenticated: m.authenticated})
	if err != nil {
		m.logger.Warn("serializing session state", "error", err)
		return
	}
	m.state.Set(stateKey, string(data), storage.Attributes{})
}
