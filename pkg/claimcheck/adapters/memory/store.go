package memory

import (
	"context"
	"sync"

	"github.com/azsbx/extended-client/pkg/claimcheck"
)

// Store is an in-memory claimcheck.PayloadStore for a single container,
// keyed by blob key alone; a pointer's Container is not consulted on
// Get or Delete.
type Store struct {
	container string

	mu   sync.RWMutex
	blobs map[string][]byte
}

// NewStore creates a store that reports container on every minted pointer.
func NewStore(container string) *Store {
	return &Store{container: container, blobs: make(map[string][]byte)}
}

// Store implements claimcheck.PayloadStore.
func (s *Store) Store(ctx context.Context, key string, body []byte, opts claimcheck.StoreOptions) (claimcheck.Pointer, error) {
	cp := make([]byte, len(body))
	copy(cp, body)

	s.mu.Lock()
	s.blobs[key] = cp
	s.mu.Unlock()

	return claimcheck.Pointer{Container: s.container, Key: key}, nil
}

// Get implements claimcheck.PayloadStore.
func (s *Store) Get(ctx context.Context, pointer claimcheck.Pointer, ignoreNotFound bool) ([]byte, error) {
	s.mu.RLock()
	body, ok := s.blobs[pointer.Key]
	s.mu.RUnlock()

	if !ok {
		if ignoreNotFound {
			return nil, nil
		}
		return nil, claimcheck.ErrNotFound("blob not found: "+pointer.Key, nil)
	}
	return body, nil
}

// Delete implements claimcheck.PayloadStore. Deleting a missing blob is success.
func (s *Store) Delete(ctx context.Context, pointer claimcheck.Pointer) error {
	s.mu.Lock()
	delete(s.blobs, pointer.Key)
	s.mu.Unlock()
	return nil
}

// Has reports whether key currently has a stored blob, for test assertions.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok
}

// Len reports how many blobs are currently stored, for test assertions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
