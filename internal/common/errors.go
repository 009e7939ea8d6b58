// Package common defines sentinel errors and small helpers shared by the
// stores, services and the shell. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("username or email already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid username or password")
	ErrorValidation   = errors.New("validation error")
	ErrorNoSession    = errors.New("no signed-in user")

	// Order-specific errors.
	ErrorInvalidQuantity = errors.New("quantity must be at least 1")
)
