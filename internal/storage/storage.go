// Package storage defines the persistence contract consumed by the terminal
// front end together with the domain types that cross it.
package storage

import (
	"context"
	"fmt"
	"strings"
)

type (
	UserID   int64
	ZettelID int64
)

// User is a registered account. LastVisitedZettel is 0 when unset.
type User struct {
	ID                UserID
	Name              string
	PasswordHash      string
	LastVisitedZettel ZettelID
}

// Zettel is a single note. ID 0 marks a note that has not been saved yet.
type Zettel struct {
	ID          ZettelID
	Path        string
	Body        string
	Attachments []Attachment
}

// IsNew reports whether the zettel still needs an id from storage.
func (z Zettel) IsNew() bool { return z.ID == 0 }

// Attachment is an opaque file attached to a zettel.
type Attachment interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
}

// ZettelHeader is a list or search result row. Highlight is empty when the
// body had no match.
type ZettelHeader struct {
	ID        ZettelID
	Path      string
	Highlight string
}

// SearchOpts selects between listing every note and a regular expression
// search over path and body.
type SearchOpts struct {
	ListAll bool
	Query   string
}

// Validate rejects a search without a query.
func (o SearchOpts) Validate() error {
	if !o.ListAll && strings.TrimSpace(o.Query) == "" {
		return ErrInvalidSearch
	}
	return nil
}

// UserMode controls how the terminal front end logs users in.
type UserMode int

const (
	SingleUserManualLogin UserMode = iota
	SingleUserAutoLogin
	MultiUser
)

// UserModes lists every mode in display order.
var UserModes = []UserMode{SingleUserAutoLogin, SingleUserManualLogin, MultiUser}

func (m UserMode) String() string {
	switch m {
	case SingleUserAutoLogin:
		return "single_user_auto_login"
	case MultiUser:
		return "multi_user"
	default:
		return "single_user_manual_login"
	}
}

// Label is the human readable name shown on the config page.
func (m UserMode) Label() string {
	switch m {
	case SingleUserAutoLogin:
		return "Single user, automatically log in"
	case MultiUser:
		return "Multiple users"
	default:
		return "Single user, manual login"
	}
}

func (m UserMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *UserMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "single_user_auto_login":
		*m = SingleUserAutoLogin
	case "single_user_manual_login", "":
		*m = SingleUserManualLogin
	case "multi_user":
		*m = MultiUser
	default:
		return fmt.Errorf("unknown user mode %q", text)
	}
	return nil
}

// SystemConfig is the configuration users can change from inside the
// application. Each field is stored as a JSON value keyed by its tag.
type SystemConfig struct {
	UserMode       UserMode `json:"user_mode"`
	TerminalEditor string   `json:"terminal_editor"`
}

// Storage is implemented by every backend. All calls block until the backend
// answers or ctx is done.
type Storage interface {
	UserCount(ctx context.Context) (int, error)
	// LoginSingleUser returns the first registered user without checking a
	// password. ErrNotFound when there are no users.
	LoginSingleUser(ctx context.Context) (User, error)
	// Login returns ErrCredentialMismatch for an unknown user or wrong password.
	Login(ctx context.Context, username, password string) (User, error)
	// Register returns ErrUserExists when the name is taken.
	Register(ctx context.Context, username, password string) (User, error)

	GetNoteByID(ctx context.Context, user UserID, id ZettelID) (Zettel, error)
	GetNoteByPath(ctx context.Context, user UserID, path string) (Zettel, error)
	// ListOrSearchNotes returns headers sorted by path. Invalid regular
	// expressions yield ErrInvalidPattern.
	ListOrSearchNotes(ctx context.Context, user UserID, opts SearchOpts) ([]ZettelHeader, error)
	// SaveNote inserts the zettel when it is new, assigning its id and making
	// it the user's last visited zettel, and updates it otherwise.
	SaveNote(ctx context.Context, user UserID, zettel *Zettel) error
	// SetLastVisitedNote records id as last visited; 0 clears it.
	SetLastVisitedNote(ctx context.Context, user UserID, id ZettelID) error

	UpdateSystemConfig(ctx context.Context, cfg SystemConfig) error
	LoadSystemConfig(ctx context.Context) (SystemConfig, error)

	Close() error
}
