// Package memory is a process-local storage backend. Nothing survives Close.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/Trangar/zettelkasten/internal/storage"
)

// Store keeps users, zettels and config in maps guarded by a mutex.
type Store struct {
	mu      sync.Mutex
	cost    int
	users   []storage.User
	zettels map[storage.UserID][]storage.Zettel
	nextID  storage.ZettelID
	config  storage.SystemConfig
}

var _ storage.Storage = (*Store)(nil)

// New returns an empty store. Password hashes use bcrypt's minimum cost.
func New() *Store {
	return &Store{
		cost:    bcrypt.MinCost,
		zettels: make(map[storage.UserID][]storage.Zettel),
		nextID:  1,
		config:  storage.DefaultSystemConfig(),
	}
}

func (s *Store) UserCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *Store) LoginSingleUser(ctx context.Context) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.users) == 0 {
		return storage.User{}, fmt.Errorf("login single user: %w", storage.ErrNotFound)
	}
	return s.users[0], nil
}

func (s *Store) Login(ctx context.Context, username, password string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name != username {
			continue
		}
		err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return storage.User{}, storage.ErrCredentialMismatch
		}
		if err != nil {
			return storage.User{}, fmt.Errorf("verify password: %w", err)
		}
		return u, nil
	}
	return storage.User{}, storage.ErrCredentialMismatch
}

func (s *Store) Register(ctx context.Context, username, password string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == username {
			return storage.User{}, storage.ErrUserExists
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := storage.User{
		ID:           storage.UserID(len(s.users) + 1),
		Name:         username,
		PasswordHash: string(hash),
	}
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) GetNoteByID(ctx context.Context, user storage.UserID, id storage.ZettelID) (storage.Zettel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, z := range s.zettels[user] {
		if z.ID == id {
			return z, nil
		}
	}
	return storage.Zettel{}, fmt.Errorf("zettel %d: %w", id, storage.ErrNotFound)
}

func (s *Store) GetNoteByPath(ctx context.Context, user storage.UserID, path string) (storage.Zettel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, z := range s.zettels[user] {
		if z.Path == path {
			return z, nil
		}
	}
	return storage.Zettel{}, fmt.Errorf("zettel %q: %w", path, storage.ErrNotFound)
}

func (s *Store) ListOrSearchNotes(ctx context.Context, user storage.UserID, opts storage.SearchOpts) ([]storage.ZettelHeader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []storage.ZettelHeader
	if opts.ListAll {
		for _, z := range s.zettels[user] {
			out = append(out, storage.ZettelHeader{ID: z.ID, Path: z.Path})
		}
	} else {
		re, err := storage.CompilePattern(opts.Query)
		if err != nil {
			return nil, err
		}
		for _, z := range s.zettels[user] {
			if re.MatchString(z.Body) || re.MatchString(z.Path) {
				out = append(out, storage.ZettelHeader{ID: z.ID, Path: z.Path, Highlight: storage.Excerpt(re, z.Body)})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *Store) SaveNote(ctx context.Context, user storage.UserID, zettel *storage.Zettel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.userIndex(user)
	if idx < 0 {
		return fmt.Errorf("user %d: %w", user, storage.ErrNotFound)
	}
	notes := s.zettels[user]
	for _, z := range notes {
		if z.Path == zettel.Path && z.ID != zettel.ID {
			return fmt.Errorf("zettel path %q already in use", zettel.Path)
		}
	}

	if zettel.IsNew() {
		zettel.ID = s.nextID
		s.nextID++
		s.zettels[user] = append(notes, cloneZettel(*zettel))
		s.users[idx].LastVisitedZettel = zettel.ID
		return nil
	}
	for i := range notes {
		if notes[i].ID == zettel.ID {
			notes[i] = cloneZettel(*zettel)
			return nil
		}
	}
	return fmt.Errorf("zettel %d: %w", zettel.ID, storage.ErrNotFound)
}

func (s *Store) SetLastVisitedNote(ctx context.Context, user storage.UserID, id storage.ZettelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.userIndex(user)
	if idx < 0 {
		return fmt.Errorf("user %d: %w", user, storage.ErrNotFound)
	}
	s.users[idx].LastVisitedZettel = id
	return nil
}

// User returns the stored copy of a user, mostly for tests.
func (s *Store) User(id storage.UserID) (storage.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.userIndex(id)
	if idx < 0 {
		return storage.User{}, false
	}
	return s.users[idx], true
}

func (s *Store) UpdateSystemConfig(ctx context.Context, cfg storage.SystemConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	return nil
}

func (s *Store) LoadSystemConfig(ctx context.Context) (storage.SystemConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) userIndex(id storage.UserID) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func cloneZettel(z storage.Zettel) storage.Zettel {
	z.Attachments = append([]storage.Attachment(nil), z.Attachments...)
	return z
}
