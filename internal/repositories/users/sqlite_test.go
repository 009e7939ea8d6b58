package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/diner/internal/common"
	"github.com/dmitrijs2005/diner/internal/dbx"
	"github.com/dmitrijs2005/diner/internal/migrations"
	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.OpenSQLite(ctx, dbx.MemoryDSN("users_"+uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, migrations.Users))
	return db
}

func TestInsert_AndGetters(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	created := time.UnixMilli(1_700_000_000_000)
	id, err := r.Insert(ctx, &models.User{
		Email:          "a@x.com",
		Username:       "alice",
		PasswordDigest: "digest",
		DisplayName:    "Alice",
		CreatedAt:      created,
	})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	byID, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "Alice", byID.DisplayName)
	assert.Equal(t, "", byID.PhoneNumber)
	assert.True(t, byID.CreatedAt.Equal(created))

	byName, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	byEmail, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, "digest", byEmail.PasswordDigest)
}

func TestInsert_ExplicitIDAndNullUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Insert(ctx, &models.User{ID: 42, Email: "user_42@local", DisplayName: "User 42"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	// a second row without username must not collide on the UNIQUE column
	_, err = r.Insert(ctx, &models.User{ID: 43, Email: "user_43@local"})
	require.NoError(t, err)

	var nulls int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users WHERE username IS NULL`).Scan(&nulls))
	assert.Equal(t, 2, nulls)

	u, err := r.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.False(t, u.HasCredentials())
}

func TestInsert_DuplicatesMapToAlreadyExists(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Insert(ctx, &models.User{Email: "a@x.com", Username: "alice"})
	require.NoError(t, err)

	_, err = r.Insert(ctx, &models.User{Email: "b@x.com", Username: "alice"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = r.Insert(ctx, &models.User{Email: "a@x.com", Username: "alice2"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGet_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.GetByID(ctx, 999)
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.GetByEmail(ctx, "none@x.com")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdatePasswordDigestByUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Insert(ctx, &models.User{Email: "a@x.com", Username: "alice", PasswordDigest: "old"})
	require.NoError(t, err)

	ok, err := r.UpdatePasswordDigestByUsername(ctx, "alice", "new")
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new", u.PasswordDigest)

	ok, err = r.UpdatePasswordDigestByUsername(ctx, "ghost", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestErrors_AreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	malformed := errors.New("database disk image is malformed")
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).WithArgs(int64(1)).WillReturnError(malformed)
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("UNIQUE constraint failed: users.email"))

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err = r.GetByID(ctx, 1)
	require.ErrorIs(t, err, malformed)
	assert.True(t, dbx.IndicatesCorruption(err))

	_, err = r.Insert(ctx, &models.User{Email: "a@x.com"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}
