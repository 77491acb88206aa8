// Package memory is a generic, mutex-guarded key/value store backing the
// in-memory repositories.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var ErrNotFound = errors.New("not found")

// Store keys each value with keyFunc. Values are stored as given; callers
// that hand out pointers must not mutate them after Set.
type Store[V any] struct {
	mu      sync.RWMutex
	data    map[string]V
	keyFunc func(V) string
}

func New[V any](keyFunc func(V) string) *Store[V] {
	return &Store[V]{data: make(map[string]V), keyFunc: keyFunc}
}

// Set inserts or replaces v under keyFunc(v).
func (s *Store[V]) Set(_ context.Context, v V) error {
	s.mu.Lock()
	s.data[s.keyFunc(v)] = v
	s.mu.Unlock()
	return nil
}

func (s *Store[V]) Get(_ context.Context, key string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

// Delete removes key, returning ErrNotFound when it was absent.
func (s *Store[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// Sorted returns every value ordered by cmp.
func (s *Store[V]) Sorted(_ context.Context, cmp func(a, b V) int) []V {
	s.mu.RLock()
	out := make([]V, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, cmp)
	return out
}

func (s *Store[V]) Has(_ context.Context, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}
