package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a session marker could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidQuantity is returned when a cart quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
