package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events per subject for tests and development mode.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
	all    []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SubjectID] = append(s.events[event.SubjectID], event)
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[subjectID]...), nil
}

// All returns every event in append order.
func (s *InMemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.all...)
}

// Actions returns the action of every event in append order.
func (s *InMemoryStore) Actions() []Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Action, 0, len(s.all))
	for _, e := range s.all {
		out = append(out, e.Action)
	}
	return out
}
