// Package artifact holds the ordered artifact collection for one session.
//
// The stream-processing task is the sole writer. External observers (UI,
// renderers) may read concurrently but never mutate; all mutation goes
// through the store methods, guarded by an RWMutex.
package artifact

import (
	"sync"

	"github.com/calder-io/sift/types"
)

// Store is the append-only ordered artifact collection with the current
// selection and derived panel visibility.
type Store struct {
	mu        sync.RWMutex
	artifacts []types.Artifact
	index     map[string]int // id -> position in artifacts
	currentID string
	pinned    bool // external code-generation mode forces the panel open
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add appends an artifact, preserving insertion order. Silent no-op when the
// id is already present; the collection is never deduplicated or reordered.
func (s *Store) Add(a types.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[a.ID]; exists {
		return
	}
	s.index[a.ID] = len(s.artifacts)
	s.artifacts = append(s.artifacts, a)
}

// UpdateContent replaces the content of the artifact with the given id.
// No-op when the id is absent.
func (s *Store) UpdateContent(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, exists := s.index[id]
	if !exists {
		return
	}
	s.artifacts[i].Content = content
}

// Select sets the current-viewed pointer. No-op when the id is not in the
// collection.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[id]; !exists {
		return
	}
	s.currentID = id
}

// Current returns the selected artifact, if any.
func (s *Store) Current() (types.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, exists := s.index[s.currentID]
	if !exists {
		return types.Artifact{}, false
	}
	return s.artifacts[i], true
}

// Get returns the artifact with the given id, if present.
func (s *Store) Get(id string) (types.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, exists := s.index[id]
	if !exists {
		return types.Artifact{}, false
	}
	return s.artifacts[i], true
}

// List returns a copy of the collection in creation order.
func (s *Store) List() []types.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

// Len returns the number of artifacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}

// ClearAll empties the collection and clears the selection. The panel closes
// unless the external mode pin holds it open.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = nil
	s.index = make(map[string]int)
	s.currentID = ""
}

// SetPinned sets the external code-generation mode flag. While pinned, the
// panel stays open regardless of collection size.
func (s *Store) SetPinned(pinned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinned = pinned
}

// Visible reports the derived panel visibility: forced open while pinned,
// otherwise open exactly while the collection is non-empty.
func (s *Store) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pinned || len(s.artifacts) > 0
}
