package history

import (
	"context"
	"sync"
	"time"
)

const defaultCapacity = 500

// MemoryStore keeps the most recent runs in memory. Once full, the oldest
// run is dropped for each new one.
type MemoryStore struct {
	mu       sync.RWMutex
	runs     []Run // oldest first
	capacity int
}

// NewMemoryStore creates a store holding at most capacity runs.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) Record(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.runs) == s.capacity {
		copy(s.runs, s.runs[1:])
		s.runs = s.runs[:len(s.runs)-1]
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.runs)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Run, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

func (s *MemoryStore) Prune(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.runs[:0]
	for _, r := range s.runs {
		if !r.CreatedAt.Before(before) {
			kept = append(kept, r)
		}
	}
	removed := int64(len(s.runs) - len(kept))
	clear(s.runs[len(kept):])
	s.runs = kept
	return removed, nil
}

func (s *MemoryStore) Close() error { return nil }
