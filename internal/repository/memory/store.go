package memory

import (
	"context"
	"sync"
)

// Store implements repository.KeyValueStore in process memory
type Store struct {
	mu   sync.Mutex
	data map[string]string
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// Get returns the values of the requested keys
func (s *Store) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := s.data[key]; ok {
			values[key] = value
		}
	}
	return values, nil
}

// Set writes every key in values
func (s *Store) Set(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.data[key] = value
	}
	return nil
}

// Update holds the store lock for the whole read-modify-write
func (s *Store) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := s.data[key]
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	s.data[key] = next
	return nil
}
