package service

import "errors"

var (
	// ErrInvalidCredentials covers every login failure: unknown identifier,
	// ambiguous identifier, wrong password. Callers must not be able to
	// tell which occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername is returned when registering an already-taken username.
	ErrDuplicateUsername = errors.New("username already registered")
	// ErrDuplicateEmail is returned when registering an already-taken email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound indicates the targeted resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden indicates the principal is authenticated but not allowed
	// to act on the targeted resource.
	ErrForbidden = errors.New("permission denied")
)
