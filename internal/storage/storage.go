package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"recite/internal/config"
	"recite/internal/migrations"
	"recite/internal/repository"
	"recite/internal/repository/memory"
	"recite/internal/repository/redis"
	"recite/internal/repository/sqlstore"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store is an opened key-value store with its release function
type Store struct {
	repository.KeyValueStore
	close func() error
}

// Close releases the underlying connections
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// RetryPolicy controls how often a database connection is attempted
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

const sqliteBusyTimeoutMs = 5000

// DefaultRetryPolicy waits up to a minute for the database to come up
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 30, Delay: 2 * time.Second}

// Open connects the configured backend and applies migrations
func Open(cfg config.StorageConfig, dsn string, logger *zap.Logger) (*Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("Using in-memory storage, words are lost on exit")
		return &Store{KeyValueStore: memory.NewStore()}, nil

	case config.BackendPostgres:
		db, err := ConnectDatabase("postgres", dsn, DefaultRetryPolicy, logger)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(db, "postgres", logger); err != nil {
			db.Close()
			return nil, err
		}
		return &Store{KeyValueStore: sqlstore.NewPostgresStore(db), close: db.Close}, nil

	case config.BackendSQLite:
		db, err := ConnectDatabase("sqlite3", SQLiteDSN(cfg.SQLitePath), RetryPolicy{MaxRetries: 1}, logger)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(db, "sqlite3", logger); err != nil {
			db.Close()
			return nil, err
		}
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
		return &Store{KeyValueStore: sqlstore.NewSQLiteStore(db), close: db.Close}, nil

	case config.BackendRedis:
		store, err := redis.New(redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return &Store{KeyValueStore: store, close: store.Close}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// SQLiteDSN builds the go-sqlite3 DSN for a database file shared between processes.
// Transactions take the write lock on BEGIN and wait for other writers instead of
// failing with SQLITE_BUSY.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_txlock=immediate&_busy_timeout=" + strconv.Itoa(sqliteBusyTimeoutMs)
}

// ConnectDatabase opens a database with retries
func ConnectDatabase(driverName, dsn string, policy RetryPolicy, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < policy.MaxRetries; i++ {
		if i > 0 {
			time.Sleep(policy.Delay)
		}

		db, err = sql.Open(driverName, dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.String("driver", driverName),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.String("driver", driverName),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		logger.Info("Database connection established", zap.String("driver", driverName))
		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", policy.MaxRetries, err)
}
