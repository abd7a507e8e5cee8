package workflow

import (
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps live wizard instances keyed by id. It exists for the
// HTTP adapter, which needs to find a caller's draft between requests;
// each wizard still belongs to exactly one caller, the store only
// serializes access to it.
type MemoryStore struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
}

// NewMemoryStore creates an empty wizard store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{wizards: make(map[string]*Wizard)}
}

// Create registers a fresh wizard and returns a copy of it.
func (s *MemoryStore) Create(id string, now time.Time) *Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := NewWizard(id, now)
	s.wizards[id] = w
	return w.Clone()
}

// Snapshot returns a deep copy of a wizard, or false when unknown.
func (s *MemoryStore) Snapshot(id string) (*Wizard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[id]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// Do runs fn against the live wizard under the store lock. The wizard
// must not escape fn; callers return Clone()d state instead.
func (s *MemoryStore) Do(id string, fn func(*Wizard) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[id]
	if !ok {
		return fmt.Errorf("workflow %s not found", id)
	}
	return fn(w)
}

// Delete removes a wizard, typically after Submit.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wizards, id)
}
