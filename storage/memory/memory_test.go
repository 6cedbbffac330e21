package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/gatehouse/storage"
)

func TestSlot_SetGetDelete(t *testing.T) {
	s := NewSlot()

	_, ok := s.Get("k")
	assert.False(t, ok)

	s.Set("k", "v", storage.Attributes{})
	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	s.Set("k", "v2", storage.Attributes{})
	got, _ = s.Get("k")
	assert.Equal(t, "v2", got)

	s.Delete("k")
	_, ok = s.Get("k")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	s.Delete("k")
}

func TestSlot_ExpiredEntryIsAMiss(t *testing.T) {
	s := NewSlot()
	s.Set("k", "v", storage.Attributes{Expires: time.Now().Add(-time.Second)})

	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestSlot_ZeroExpiryNeverExpires(t *testing.T) {
	s := NewSlot()
	s.Set("k", "v", storage.Attributes{})

	_, ok := s.Get("k")
	assert.True(t, ok)
}
