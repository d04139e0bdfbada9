package contentstore

import (
	"context"
	"sync"
)

// InMemory keeps blobs in a map keyed by address. Used in tests and when no
// IPFS node is configured for development runs.
type InMemory struct {
	mu    sync.Mutex
	blobs map[Address][]byte

	// PutErr, when set, fails every Put.
	PutErr error
}

func NewInMemory() *InMemory {
	return &InMemory{blobs: make(map[Address][]byte)}
}

func (s *InMemory) Put(_ context.Context, data []byte, _ string) (Address, error) {
	if s.PutErr != nil {
		return "", s.PutErr
	}
	addr, err := AddressOf(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[addr] = cp
	return addr, nil
}

// Get returns a stored blob, for test assertions.
func (s *InMemory) Get(addr Address) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[addr]
	return b, ok
}
