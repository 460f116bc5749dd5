package artifact

import "sync"

// syncSlice is an append-only slice safe for concurrent use.
type syncSlice[T any] struct {
	mu    sync.Mutex
	items []T
}

func (s *syncSlice[T]) append(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

func (s *syncSlice[T]) snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
