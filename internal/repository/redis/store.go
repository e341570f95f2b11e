package redis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrConflict is returned when an update keeps losing to concurrent writers
var ErrConflict = errors.New("redis: too many concurrent updates")

const (
	connectionTimeout = 5 * time.Second
	maxUpdateAttempts = 10
)

// Options contains configuration for the Redis store
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store implements repository.KeyValueStore on Redis strings
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection
func New(opts Options) (*Store, error) {
	// Parse address to handle redis:// scheme
	addr := opts.Addr
	if parsedURL, err := url.Parse(opts.Addr); err == nil && parsedURL.Scheme == "redis" {
		addr = parsedURL.Host
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, opts.Prefix), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get returns the values of the requested keys
func (s *Store) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = s.fullKey(key)
	}

	raw, err := s.client.MGet(ctx, fullKeys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range raw {
		if str, ok := v.(string); ok {
			values[keys[i]] = str
		}
	}
	return values, nil
}

// Set writes every key in values in one MULTI block
func (s *Store) Set(ctx context.Context, values map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range values {
			pipe.Set(ctx, s.fullKey(key), value, 0)
		}
		return nil
	})
	return err
}

// Update watches key and retries when another client wrote it first
func (s *Store) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	full := s.fullKey(key)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, full).Result()
		found := true
		if errors.Is(err, redis.Nil) {
			current, found = "", false
		} else if err != nil {
			return err
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, full)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}
