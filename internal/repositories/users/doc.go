// Package users provides the persistence layer for local user accounts.
//
// The Repository interface covers what the credential store needs: inserting
// a user (optionally with an explicit id, used for placeholder rows), lookups
// by id, email and username, and replacing a password digest.
// SQLiteRepository implements it over a dbx.DBTX.
//
// Lookups that find nothing return common.ErrorNotFound. Inserts that hit the
// UNIQUE constraint on email or username return common.ErrorAlreadyExists.
// Empty optional strings are stored as NULL so several accounts may share an
// absent username.
//
// Typical Usage
//
//	repo := users.NewSQLiteRepository(db)
//	id, err := repo.Insert(ctx, &models.User{Email: "a@x.com", Username: "alice"})
//	u, err := repo.GetByUsername(ctx, "alice")
package users
