// Package prefs stores the small key-value preferences kept outside the user
// database: the session's current user id and UI settings.
package prefs

import (
	"context"
)

// Keys in use.
const (
	KeyCurrentUserID = "current_user_id"
	KeyTheme         = "pref_theme"
)

// Repository is a byte-valued key-value store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
