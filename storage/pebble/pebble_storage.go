package pebble

import (
	"context"

	"github.com/cockroachdb/pebble"
	"github.com/gofrs/uuid/v5"

	"github.com/vheiberg/aclstore"
)

// PebbleStorage keeps the denial list in a local pebble database. Keys are
// the public key followed by the document address; the value is the id of
// the denial record.
type PebbleStorage struct {
	db *pebble.DB
}

func NewPebbleStorage(dirname string) (*PebbleStorage, error) {
	db, err := pebble.Open(dirname, &pebble.Options{})
	return &PebbleStorage{db}, err
}

func (s *PebbleStorage) Close() error {
	return s.db.Close()
}

func (s *PebbleStorage) Check(ctx context.Context, public aclstore.Public, document aclstore.DocumentAddress) (bool, error) {
	_, closer, err := s.db.Get(toKey(public, document))
	if err == pebble.ErrNotFound {
		return true, nil
	} else if err != nil {
		return false, err
	}
	closer.Close()
	return false, nil
}

func (s *PebbleStorage) Deny(ctx context.Context, public aclstore.Public, document aclstore.DocumentAddress) error {
	key := toKey(public, document)
	// Keep the original record if the pair is already denied.
	_, closer, err := s.db.Get(key)
	if err == nil {
		closer.Close()
		return nil
	} else if err != pebble.ErrNotFound {
		return err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	return s.db.Set(key, id.Bytes(), pebble.Sync)
}

func (s *PebbleStorage) Read(ctx context.Context, public aclstore.Public, document aclstore.DocumentAddress) (uuid.UUID, error) {
	value, closer, err := s.db.Get(toKey(public, document))
	if err == pebble.ErrNotFound {
		return uuid.UUID{}, aclstore.ErrNotFound
	} else if err != nil {
		return uuid.UUID{}, err
	}
	id, err := uuid.FromBytes(value)
	closer.Close()
	return id, err
}

// Both parts are fixed-size, so no separator is needed.
func toKey(public aclstore.Public, document aclstore.DocumentAddress) []byte {
	key := make([]byte, 0, len(public)+len(document))
	key = append(key, public[:]...)
	key = append(key, document[:]...)
	return key
}
