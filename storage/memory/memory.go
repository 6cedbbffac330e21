// Package memory provides a thread-safe in-memory implementation of storage.Slot.
package memory

import (
	"sync"
	"time"

	"github.com/jmcleod/gatehouse/storage"
)

// Slot is a thread-safe in-memory implementation of storage.Slot. Entries are
// lost when the process exits, which makes it the tab-scoped storage analogue
// and the test double.
type Slot struct {
	mu   sync.RWMutex
	data map[string]entry
}

type entry struct {
	value string
	attrs storage.Attributes
}

var _ storage.Slot = (*Slot)(nil)

// NewSlot creates an empty in-memory Slot.
func NewSlot() *Slot {
	return &Slot{data: make(map[string]entry)}
}

func (s *Slot) Get(key string) (string, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if e.attrs.Expired(time.Now()) {
		s.Delete(key)
		return "", false
	}
	return e.value, true
}

func (s *Slot) Set(key string, value string, attrs storage.Attributes) {
	s.mu.Lock()
	s.data[key] = entry{value: value, attrs: attrs}
	s.mu.Unlock()
}

func (s *Slot) Delete(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}
