package store

import (
	"context"
	"sort"
	"sync"

	"lifebridge/internal/registry/models"
)

// InMemoryProfileStore implements ProfileStore with a mutex-guarded map.
// Used by unit tests and single-node development deployments; production
// uses PostgresProfileStore.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[models.ProfileID]*models.Profile
}

// NewInMemory creates an empty in-memory profile store.
func NewInMemory() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		profiles: make(map[models.ProfileID]*models.Profile),
	}
}

func (s *InMemoryProfileStore) Get(_ context.Context, id models.ProfileID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryProfileStore) List(_ context.Context, role models.Role) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if role != "" && p.Role != role {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	// Stable order keeps list responses reproducible.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryProfileStore) Create(_ context.Context, profile *models.Profile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.ID]; exists {
		return false, nil
	}
	cp := *profile
	s.profiles[profile.ID] = &cp
	return true, nil
}

func (s *InMemoryProfileStore) Put(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *profile
	s.profiles[profile.ID] = &cp
	return nil
}
