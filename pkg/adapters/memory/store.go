package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/mathview/pkg/domain"
)

// Store implements ports.PreferenceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

// Save keeps the blob for profile.
func (s *Store) Save(ctx context.Context, profile, blob string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[profile] = blob
	return nil
}

// Load retrieves the blob for profile.
func (s *Store) Load(ctx context.Context, profile string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.data[profile]
	if !ok {
		return "", domain.ErrProfileNotFound
	}
	return blob, nil
}

// Delete removes the blob.
func (s *Store) Delete(ctx context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, profile)
	return nil
}

// List returns the saved profiles, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make([]string, 0, len(s.data))
	for id := range s.data {
		profiles = append(profiles, id)
	}
	slices.Sort(profiles)
	return profiles, nil
}
