package testutil

import (
	"context"
	"testing"
	"time"

	"recite/internal/domain"
	"recite/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// NewTestEntry creates an entry added at addedAt
func NewTestEntry(term string, addedAt time.Time, successCount int, translations ...string) domain.Entry {
	return domain.Entry{
		Term:         term,
		Translations: translations,
		AddedAt:      addedAt,
		SuccessCount: successCount,
	}
}

// NewSeededStore creates an in-memory store holding entries under key
func NewSeededStore(t *testing.T, key string, entries ...domain.Entry) *memory.Store {
	t.Helper()

	v := domain.NewVocabulary()
	for _, e := range entries {
		v.Set(e)
	}
	stored, err := v.Encode()
	require.NoError(t, err)

	store := memory.NewStore()
	require.NoError(t, store.Set(context.Background(), map[string]string{key: stored}))
	return store
}

// LoadVocabulary reads the vocabulary stored under key
func LoadVocabulary(t *testing.T, store *memory.Store, key string) *domain.Vocabulary {
	t.Helper()

	values, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	v, err := domain.ParseVocabulary(values[key])
	require.NoError(t, err)
	return v
}
