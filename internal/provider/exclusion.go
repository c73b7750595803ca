package provider

import (
	"slices"
	"sync"
)

// ExclusionSet holds the models currently believed to be quota-exhausted.
// All methods are safe for concurrent use.
type ExclusionSet struct {
	mu     sync.RWMutex
	models map[string]struct{}
}

// NewExclusionSet returns an empty set.
func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{models: make(map[string]struct{})}
}

// Add marks model as excluded.
func (s *ExclusionSet) Add(model string) {
	s.mu.Lock()
	s.models[model] = struct{}{}
	s.mu.Unlock()
}

// Contains reports whether model is excluded.
func (s *ExclusionSet) Contains(model string) bool {
	s.mu.RLock()
	_, ok := s.models[model]
	s.mu.RUnlock()
	return ok
}

// Clear empties the set. Concurrent clears are harmless.
func (s *ExclusionSet) Clear() {
	s.mu.Lock()
	clear(s.models)
	s.mu.Unlock()
}

// Len returns the number of excluded models.
func (s *ExclusionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.models)
}

// Snapshot returns the excluded models in sorted order.
func (s *ExclusionSet) Snapshot() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.models))
	for m := range s.models {
		out = append(out, m)
	}
	s.mu.RUnlock()
	slices.Sort(out)
	return out
}
