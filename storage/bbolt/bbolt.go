// Package bbolt provides a BBolt-backed storage slot.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmcleod/gatehouse/storage"
	"go.etcd.io/bbolt"
)

// Slot implements storage.Slot backed by one bucket of a BBolt database.
// Entries survive process restarts, which makes it the cookie-jar analogue:
// a session token written here can be rehydrated by a later process.
type Slot struct {
	db     *bbolt.DB
	bucket []byte
}

var _ storage.Slot = (*Slot)(nil)

type record struct {
	Value string             `json:"value"`
	Attrs storage.Attributes `json:"attrs"`
}

// NewSlot returns a Slot stored in the named bucket of the given database.
// Several slots may share one database under different bucket names.
func NewSlot(db *bbolt.DB, bucket string) *Slot {
	return &Slot{db: db, bucket: []byte(bucket)}
}

// Open opens a BBolt database at the given path.
func Open(path string, options *bbolt.Options) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return db, nil
}

func (s *Slot) Get(key string) (string, bool) {
	var rec record
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errNotFound
		}
		data := b.Get([]byte(key))
		if data == nil {
			return errNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return "", false
	}
	if rec.Attrs.Expired(time.Now()) {
		s.Delete(key)
		return "", false
	}
	return rec.Value, true
}

func (s *Slot) Set(key string, value string, attrs storage.Attributes) {
	data, err := json.Marshal(record{Value: value, Attrs: attrs})
	if err != nil {
		return
	}
	_ = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

func (s *Slot) Delete(key string) {
	_ = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

var errNotFound = errors.New("not found")
