package reports

import (
	"context"
	"sync"
)

// DefaultCapacity bounds a MemoryStore created with capacity <= 0.
const DefaultCapacity = 1000

// MemoryStore keeps the most recent reports in a ring buffer.
type MemoryStore struct {
	mu     sync.RWMutex
	ring   []Record
	next   int
	full   bool
	closed bool
}

// NewMemoryStore creates a store holding at most capacity records.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{ring: make([]Record, capacity)}
}

// Save implements Store. The oldest record is dropped once full.
func (s *MemoryStore) Save(_ context.Context, r Record) error {
	prepare(&r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.ring[s.next] = r
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []Record
	if s.full {
		out = append(out, s.ring[s.next:]...)
	}
	out = append(out, s.ring[:s.next]...)
	return newestFirst(out, limit), nil
}

// Len returns the number of records held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.full {
		return len(s.ring)
	}
	return s.next
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.ring = nil
	return nil
}
