package prefs

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/diner/internal/dbx"
	"github.com/dmitrijs2005/diner/internal/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.OpenSQLite(ctx, dbx.MemoryDSN("prefs_"+uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, migrations.Prefs))
	return db
}

func TestSetGet_Upsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	v, err := r.Get(ctx, KeyTheme)
	require.NoError(t, err)
	require.Nil(t, v, "missing key reads as (nil, nil)")

	require.NoError(t, r.Set(ctx, KeyTheme, []byte("light")))
	require.NoError(t, r.Set(ctx, KeyTheme, []byte("dark")))

	v, err = r.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, []byte("dark"), v)
}

func TestDeleteListClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, all)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "absent"))
	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, r.Clear(ctx))
	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTypedHelpers(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	id, err := GetInt64(ctx, r, KeyCurrentUserID, 0)
	require.NoError(t, err)
	assert.Zero(t, id)

	require.NoError(t, SetInt64(ctx, r, KeyCurrentUserID, 42))
	id, err = GetInt64(ctx, r, KeyCurrentUserID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.NoError(t, r.Set(ctx, KeyCurrentUserID, []byte("garbage")))
	id, err = GetInt64(ctx, r, KeyCurrentUserID, 0)
	require.Error(t, err)
	assert.Zero(t, id)

	theme, err := GetString(ctx, r, KeyTheme, "light")
	require.NoError(t, err)
	assert.Equal(t, "light", theme)
	require.NoError(t, SetString(ctx, r, KeyTheme, "dark"))
	theme, err = GetString(ctx, r, KeyTheme, "light")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
}

func TestGet_WrapsEngineError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery(`SELECT value FROM metadata`).WithArgs(KeyTheme).WillReturnError(boom)

	_, err = NewSQLiteRepository(db).Get(context.Background(), KeyTheme)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
