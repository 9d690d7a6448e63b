// Package store persists composed routines so coaches can come back to them.
//
// Two implementations are provided: [MemoryStore] for the CLI and tests,
// and [MongoStore] for the server's routine library. Both return
// [ErrNotFound] for unknown IDs.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/matzehuels/cheertower/pkg/routine"
)

// ErrNotFound is returned when no routine has the requested ID.
var ErrNotFound = errors.New("routine not found")

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Store saves and retrieves routines by ID.
type Store interface {
	// Save inserts or replaces r. r.ID must be set.
	Save(ctx context.Context, r *routine.Routine) error

	// Get returns the routine with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*routine.Routine, error)

	// List returns up to limit routines, newest first.
	List(ctx context.Context, limit int) ([]*routine.Routine, error)

	// Delete removes a routine. Deleting a missing ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// MemoryStore keeps routines in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	routines map[string]*routine.Routine
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{routines: make(map[string]*routine.Routine)}
}

// Save stores a copy of r.
func (s *MemoryStore) Save(ctx context.Context, r *routine.Routine) error {
	if r == nil || r.ID == "" {
		return errors.New("store: routine id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routines[r.ID] = clone(r)
	return nil
}

// Get returns a copy of the stored routine.
func (s *MemoryStore) Get(ctx context.Context, id string) (*routine.Routine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

// List returns routines ordered by creation time, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*routine.Routine, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	out := make([]*routine.Routine, 0, len(s.routines))
	for _, r := range s.routines {
		out = append(out, clone(r))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a routine.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routines[id]; !ok {
		return ErrNotFound
	}
	delete(s.routines, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func clone(r *routine.Routine) *routine.Routine {
	c := *r
	c.Request.Sections = append([]string(nil), r.Request.Sections...)
	c.Sections = append([]routine.Section(nil), r.Sections...)
	c.Notes = append([]string(nil), r.Notes...)
	return &c
}

var _ Store = (*MemoryStore)(nil)
