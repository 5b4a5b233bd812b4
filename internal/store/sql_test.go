package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plan-annotator/internal/store"
)

func openSQLiteKV(t *testing.T) *store.SQLKV {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "db", "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	kv := store.NewSQLKV(db, store.SQLite)
	require.NoError(t, kv.Init(context.Background()))
	return kv
}

func TestSQLiteKV(t *testing.T) {
	ctx := context.Background()
	kv := openSQLiteKV(t)

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	require.NoError(t, kv.Set(ctx, "k", "v2"))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	require.NoError(t, kv.Init(ctx), "init is repeatable")
}

func TestSQLiteCollection(t *testing.T) {
	ctx := context.Background()
	c := store.NewCollection[item](openSQLiteKV(t), store.BuildingsKey, zap.NewNop())

	list := []item{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}}
	require.NoError(t, c.SaveAll(ctx, list))
	got, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, got)

	require.NoError(t, c.Mutate(ctx, func(list []item) ([]item, error) {
		return store.ReplaceOrAppend(list, item{ID: "b", Name: "B2"}, byID("b")), nil
	}))
	got, err = c.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "b", Name: "B2"}, {ID: "a", Name: "A"}}, got)
}

func TestSQLKVBackendErrors(t *testing.T) {
	ctx := context.Background()
	selectSQL := regexp.QuoteMeta("SELECT entry_value FROM kv_entries WHERE entry_key = ?")

	t.Run("read failure surfaces from GetAll", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(selectSQL).WithArgs("k").WillReturnError(errors.New("disk I/O error"))

		c := store.NewCollection[item](store.NewSQLKV(db, store.SQLite), "k", zap.NewNop())
		_, err = c.GetAll(ctx)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("aborted mutation rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(selectSQL).WithArgs("k").
			WillReturnRows(sqlmock.NewRows([]string{"entry_value"}).AddRow(`[{"id":"a"}]`))
		mock.ExpectRollback()

		errAbort := errors.New("abort")
		c := store.NewCollection[item](store.NewSQLKV(db, store.SQLite), "k", zap.NewNop())
		err = c.Mutate(ctx, func(list []item) ([]item, error) {
			assert.Len(t, list, 1)
			return nil, errAbort
		})
		assert.ErrorIs(t, err, errAbort)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("postgres locks the row and uses numbered args", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE entry_key = $1 FOR UPDATE")).WithArgs("k").
			WillReturnRows(sqlmock.NewRows([]string{"entry_value"}))
		mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, CURRENT_TIMESTAMP)")).
			WithArgs("k", `[{"id":"a","name":""}]`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c := store.NewCollection[item](store.NewSQLKV(db, store.Postgres), "k", zap.NewNop())
		require.NoError(t, c.Mutate(ctx, func(list []item) ([]item, error) {
			assert.Empty(t, list)
			return append(list, item{ID: "a"}), nil
		}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
