package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store implements repository.KeyValueStore on a kv_store table
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// NewStore creates a new key-value store for the given dialect
func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// NewPostgresStore creates a store backed by PostgreSQL
func NewPostgresStore(db *sql.DB) *Store {
	return NewStore(db, Postgres)
}

// NewSQLiteStore creates a store backed by SQLite
func NewSQLiteStore(db *sql.DB) *Store {
	return NewStore(db, SQLite)
}

// Get returns the values of the requested keys
func (s *Store) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	query, args := s.dialect.getMany(keys)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}

	return values, rows.Err()
}

// Set writes every key in values inside one transaction
func (s *Store) Set(ctx context.Context, values map[string]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for key, value := range values {
			if _, err := tx.ExecContext(ctx, s.dialect.upsert, key, value); err != nil {
				return fmt.Errorf("upsert %q: %w", key, err)
			}
		}
		return nil
	})
}

// Update reads, transforms and writes key inside one transaction
func (s *Store) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var current string
		found := true
		err := tx.QueryRowContext(ctx, s.dialect.selectForUpdate, key).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
		} else if err != nil {
			return fmt.Errorf("select %q: %w", key, err)
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.dialect.upsert, key, next); err != nil {
			return fmt.Errorf("upsert %q: %w", key, err)
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
