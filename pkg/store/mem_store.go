package store

import (
	"sync"

	"src.protosketch.dev/pkg/store/storedefs"
)

// NewMemStore returns a Store that keeps blobs in memory. It is safe for
// concurrent use.
func NewMemStore() storedefs.Store {
	return &memStore{blobs: map[string][]byte{}}
}

type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (s *memStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, storedefs.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *memStore) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		s.blobs[key] = append([]byte(nil), data...)
	}
	return nil
}

func (s *memStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *memStore) Close() error { return nil }
