package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := NewToken(7, "ada@x.com", issued)

	decoded, err := DecodeToken(tok.Encode())
	require.NoError(t, err)
	assert.Equal(t, tok, decoded)
	assert.Equal(t, issued.UnixMilli(), decoded.IssuedAt)
}

func TestToken_Age(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := NewToken(1, "ada@x.com", issued)

	assert.Equal(t, time.Hour, tok.Age(issued.Add(time.Hour)))
	// A clock moved backwards yields a negative age, which never trips the
	// expiry check.
	assert.Equal(t, -time.Minute, tok.Age(issued.Add(-time.Minute)))
}

func TestDecodeToken_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"base64 of non-json", base64.StdEncoding.EncodeToString([]byte("not json"))},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToken(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}