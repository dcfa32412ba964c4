package aclstore

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"
)

// MemoryStorage allows every (public, document) pair except those
// explicitly denied. It defines the decision semantics the on-chain
// implementation must match and stands in for the chain in tests of
// dependents. Check never returns an error.
type MemoryStorage struct {
	mu     sync.RWMutex
	denied map[Public]map[DocumentAddress]uuid.UUID
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{denied: map[Public]map[DocumentAddress]uuid.UUID{}}
}

func (s *MemoryStorage) Check(ctx context.Context, public Public, document DocumentAddress) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, denied := s.denied[public][document]
	return !denied, nil
}

func (s *MemoryStorage) Deny(ctx context.Context, public Public, document DocumentAddress) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	documents, ok := s.denied[public]
	if !ok {
		documents = map[DocumentAddress]uuid.UUID{}
		s.denied[public] = documents
	}
	if _, ok := documents[document]; !ok {
		documents[document] = id
	}
	return nil
}

func (s *MemoryStorage) Read(ctx context.Context, public Public, document DocumentAddress) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.denied[public][document]
	if !ok {
		return uuid.UUID{}, ErrNotFound
	}
	return id, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
