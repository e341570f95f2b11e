package sqlstore

import (
	"strings"

	"github.com/lib/pq"
)

// Dialect holds the SQL that differs between database engines
type Dialect struct {
	Name string

	// getMany builds the multi-key lookup query
	getMany func(keys []string) (string, []any)

	selectForUpdate string
	upsert          string
}

// Postgres locks the row for the duration of an update
var Postgres = Dialect{
	Name: "postgres",
	getMany: func(keys []string) (string, []any) {
		return `SELECT key, value FROM kv_store WHERE key = ANY($1)`, []any{pq.Array(keys)}
	},
	selectForUpdate: `SELECT value FROM kv_store WHERE key = $1 FOR UPDATE`,
	upsert: `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`,
}

// SQLite has no row locks; its write transactions are serialized by the engine
var SQLite = Dialect{
	Name: "sqlite3",
	getMany: func(keys []string) (string, []any) {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
		args := make([]any, len(keys))
		for i, key := range keys {
			args[i] = key
		}
		return `SELECT key, value FROM kv_store WHERE key IN (` + placeholders + `)`, args
	},
	selectForUpdate: `SELECT value FROM kv_store WHERE key = ?`,
	upsert: `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
}
