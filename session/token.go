package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Token is the persisted session artifact: a base64 encoding of a compact
// JSON object. It carries no signature, so anything with access to the
// persistence slot can mint one for an arbitrary user id — it proves
// possession of the slot, not identity. The verifier can only check
// well-formedness and age; rehydration re-resolves the identity against the
// live credential store rather than trusting the embedded fields.
type Token struct {
	UserID   int    `json:"id"`
	Email    string `json:"email"`
	IssuedAt int64  `json:"timestamp"` // epoch milliseconds
}

// NewToken mints a token for the given user issued at now.
func NewToken(userID int, email string, now time.Time) Token {
	return Token{UserID: userID, Email: email, IssuedAt: now.UnixMilli()}
}

// Age returns how long before now the token was issued.
func (t Token) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(t.IssuedAt))
}

// Encode serializes the token to its persisted form.
func (t Token) Encode() string {
	data, err := json.Marshal(t)
	if err != nil {
		// Token has no unserializable fields; this cannot happen.
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeToken parses a persisted token. Any defect in the artifact — bad
// base64, bad JSON — is reported as ErrMalformedToken.
func DecodeToken(s string) (Token, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return t, nil
}
