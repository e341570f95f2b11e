package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresStore(db)

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("dictionaries", "[]")

	mock.ExpectQuery("SELECT key, value FROM kv_store WHERE key = ANY\\(\\$1\\)").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	values, err := repo.Get(context.Background(), "dictionaries", "missing")

	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"dictionaries": "[]"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_NoKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	values, err := NewPostgresStore(db).Get(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_SQLite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteStore(db)

	mock.ExpectQuery("SELECT key, value FROM kv_store WHERE key IN \\(\\?, \\?\\)").
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).AddRow("b", "2"))

	values, err := repo.Get(context.Background(), "a", "b")

	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "2"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT key, value FROM kv_store").
		WillReturnError(fmt.Errorf("connection reset"))

	values, err := NewPostgresStore(db).Get(context.Background(), "dictionaries")

	assert.Error(t, err)
	assert.Nil(t, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Set(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kv_store").
		WithArgs("dictionaries", "[]").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = NewPostgresStore(db).Set(context.Background(), map[string]string{"dictionaries": "[]"})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Set_ExecErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kv_store").
		WithArgs("dictionaries", "[]").
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	err = NewPostgresStore(db).Set(context.Background(), map[string]string{"dictionaries": "[]"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update(t *testing.T) {
	tests := []struct {
		name          string
		setupRow      func(mock sqlmock.Sqlmock)
		expectedFound bool
		expectedValue string
	}{
		{
			name: "existing key",
			setupRow: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT value FROM kv_store WHERE key = \\$1 FOR UPDATE").
					WithArgs("dictionaries").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("old"))
			},
			expectedFound: true,
			expectedValue: "old",
		},
		{
			name: "missing key",
			setupRow: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT value FROM kv_store WHERE key = \\$1 FOR UPDATE").
					WithArgs("dictionaries").
					WillReturnError(sql.ErrNoRows)
			},
			expectedFound: false,
			expectedValue: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			tt.setupRow(mock)
			mock.ExpectExec("INSERT INTO kv_store").
				WithArgs("dictionaries", "new").
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			var gotFound bool
			var gotValue string
			err = NewPostgresStore(db).Update(context.Background(), "dictionaries", func(current string, found bool) (string, error) {
				gotValue, gotFound = current, found
				return "new", nil
			})

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedFound, gotFound)
			assert.Equal(t, tt.expectedValue, gotValue)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Update_FuncErrorSkipsWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT value FROM kv_store WHERE key = \\?").
		WithArgs("dictionaries").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("old"))
	mock.ExpectRollback()

	errAbort := errors.New("abort")
	err = NewSQLiteStore(db).Update(context.Background(), "dictionaries", func(current string, found bool) (string, error) {
		return "", errAbort
	})

	assert.ErrorIs(t, err, errAbort)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(fmt.Errorf("too many connections"))

	err = NewPostgresStore(db).Update(context.Background(), "dictionaries", func(current string, found bool) (string, error) {
		t.Fatal("update func must not run")
		return "", nil
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}
