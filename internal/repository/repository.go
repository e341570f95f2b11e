package repository

import "context"

// KeyValueStore defines whole-value storage operations
type KeyValueStore interface {
	// Get returns the values of the requested keys; absent keys are omitted
	Get(ctx context.Context, keys ...string) (map[string]string, error)

	// Set writes every key in values
	Set(ctx context.Context, values map[string]string) error

	// Update performs an atomic read-modify-write of a single key.
	// fn receives the current value; if it returns an error nothing is written
	// and that error is returned unchanged.
	Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error
}
