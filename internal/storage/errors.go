package storage

import "errors"

// Error kinds returned by every backend. Callers match them with errors.Is;
// anything else is a transport or database failure.
var (
	// ErrNotFound means the requested user, zettel or config row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPattern means a search query is not a valid regular expression.
	ErrInvalidPattern = errors.New("invalid search pattern")
	// ErrCredentialMismatch means the username or password is wrong.
	ErrCredentialMismatch = errors.New("username or password mismatch")
	// ErrUserExists means the username is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidSearch means a search without a query was requested.
	ErrInvalidSearch = errors.New("invalid search options")
)
