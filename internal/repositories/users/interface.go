package users

import (
	"context"

	"github.com/dmitrijs2005/diner/internal/models"
)

// Repository describes the storage operations on User rows.
type Repository interface {
	// Insert stores u and returns its id. A positive u.ID is used as is.
	Insert(ctx context.Context, u *models.User) (int64, error)

	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail returns the user with the given email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByUsername returns the user with the given username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdatePasswordDigestByUsername replaces the digest and reports whether
	// a row was changed.
	UpdatePasswordDigestByUsername(ctx context.Context, username, digest string) (bool, error)
}
