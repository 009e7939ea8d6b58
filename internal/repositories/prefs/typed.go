package prefs

import (
	"context"
	"fmt"
	"strconv"
)

// GetInt64 reads a decimal value; a missing key yields def.
func GetInt64(ctx context.Context, r Repository, key string, def int64) (int64, error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return def, err
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return def, fmt.Errorf("pref[%s] is not an integer: %w", key, err)
	}
	return v, nil
}

// SetInt64 stores v in decimal form.
func SetInt64(ctx context.Context, r Repository, key string, v int64) error {
	return r.Set(ctx, key, []byte(strconv.FormatInt(v, 10)))
}

// GetString reads a text value; a missing key yields def.
func GetString(ctx context.Context, r Repository, key, def string) (string, error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return def, err
	}
	return string(raw), nil
}

func SetString(ctx context.Context, r Repository, key, v string) error {
	return r.Set(ctx, key, []byte(v))
}
