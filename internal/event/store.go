package event

import (
	"sync"
)

// Store keeps every event received since the last Reset
type Store struct {
	mu     sync.RWMutex
	events []Event
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Add(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

// All returns a copy of the captured events in arrival order
func (s *Store) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}

// Find returns matching events in arrival order
func (s *Store) Find(f Filter) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// TypesFor lists the distinct event types seen for an aggregate
func (s *Store) TypesFor(aggregateRootID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var types []string
	for _, e := range s.events {
		if e.AggregateRootID == aggregateRootID && !seen[e.Type] {
			seen[e.Type] = true
			types = append(types, e.Type)
		}
	}
	return types
}
