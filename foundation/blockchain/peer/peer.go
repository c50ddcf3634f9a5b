// Package peer maintains the peer related information such as the set
// of known peers a node follows.
package peer

import (
	"slices"
	"sync"
)

// ID identifies a node in the network.
type ID int

// =============================================================================

// Set represents the data representation to maintain a set of known peers.
type Set struct {
	mu  sync.RWMutex
	set map[ID]struct{}
}

// NewSet constructs a new set holding the specified peers.
func NewSet(ids ...ID) *Set {
	set := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return &Set{
		set: set,
	}
}

// Add adds a new peer to the set, reporting false if it was already known.
func (s *Set) Add(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.set[id]
	if !exists {
		s.set[id] = struct{}{}
		return true
	}

	return false
}

// Remove removes a peer from the set.
func (s *Set) Remove(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.set, id)
}

// Contains reports whether the peer is in the set.
func (s *Set) Contains(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.set[id]
	return exists
}

// Len returns the number of peers in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.set)
}

// Copy returns the known peers in ascending order.
func (s *Set) Copy() []ID {
	s.mu.RLock()
	ids := make([]ID, 0, len(s.set))
	for id := range s.set {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	slices.Sort(ids)

	return ids
}
