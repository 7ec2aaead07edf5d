package requests

import (
	"context"
	"sort"
	"sync"
	"time"

	"lifebridge/internal/registry/models"
)

// InMemoryStore keeps match requests in memory for tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[string]MatchRequest
}

// NewInMemoryStore creates an empty in-memory request store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[string]MatchRequest)}
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*MatchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	out := req
	return &out, nil
}

func (s *InMemoryStore) List(_ context.Context, recipientID models.ProfileID) ([]*MatchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*MatchRequest, 0, len(s.requests))
	for _, req := range s.requests {
		if recipientID != "" && req.RecipientID != recipientID {
			continue
		}
		r := req
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemoryStore) Put(_ context.Context, req *MatchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = *req
	return nil
}

func (s *InMemoryStore) Accept(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok || req.Status != StatusPending {
		return false, nil
	}
	req.Status = StatusAccepted
	req.AcceptedAt = &at
	s.requests[id] = req
	return true, nil
}
