package app

import (
	"errors"
	"fmt"

	"github.com/Trangar/zettelkasten/internal/storage"
)

// Errors shown inline on the login and registration forms.
var (
	ErrLoginFailed        = errors.New("login failed: username or password incorrect")
	ErrPasswordsDontMatch = errors.New("passwords don't match")
	ErrRegisterFailed     = errors.New("could not register: username is already taken")
)

// RequiredFieldError reports an empty form field.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string { return e.Field + " is required" }

// StorageError wraps an unexpected storage failure shown on a form.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage error: " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// ZettelNotFoundError is returned when the last visited zettel of a user no
// longer exists.
type ZettelNotFoundError struct {
	ID  storage.ZettelID
	Err error
}

func (e *ZettelNotFoundError) Error() string { return fmt.Sprintf("zettel ID %d not found", e.ID) }

func (e *ZettelNotFoundError) Unwrap() error { return e.Err }

// UnknownSysPageError is returned when a link points at an unknown sys: page.
type UnknownSysPageError struct {
	Page string
}

func (e *UnknownSysPageError) Error() string {
	return fmt.Sprintf("unknown system page %q, `sys:` is a reserved prefix", e.Page)
}

// Notice is an error that is only informational: the driver shows it with a
// continue action and no option to quit.
type Notice struct {
	Title string
	Lines []string
}

func (n *Notice) Error() string {
	if len(n.Lines) == 0 {
		return n.Title
	}
	return n.Title + ": " + n.Lines[0]
}
