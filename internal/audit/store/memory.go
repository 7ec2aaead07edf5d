// Package store provides disclosure-trail persistence.
package store

import (
	"context"
	"sync"

	"lifebridge/internal/audit"
)

// InMemoryStore keeps disclosure events in memory for tests and
// development.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.DisclosureEvent
}

// NewInMemory creates an empty in-memory disclosure store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.DisclosureEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of the recorded events, for assertions in tests.
func (s *InMemoryStore) Events() []audit.DisclosureEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.DisclosureEvent, len(s.events))
	copy(out, s.events)
	return out
}
