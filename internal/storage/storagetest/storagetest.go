// Package storagetest holds behaviour checks shared by every storage backend.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/Trangar/zettelkasten/internal/storage"
)

// Factory opens an empty store. The store is closed by the suite.
type Factory func(t *testing.T) storage.Storage

// Run exercises the full storage contract against stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Helper()
	cases := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"RegisterAndLogin", testRegisterAndLogin},
		{"LoginSingleUser", testLoginSingleUser},
		{"SaveAndFetch", testSaveAndFetch},
		{"LastVisited", testLastVisited},
		{"ListAll", testListAll},
		{"Search", testSearch},
		{"SystemConfig", testSystemConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() {
				if err := s.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			})
			tc.fn(t, s)
		})
	}
}

func register(t *testing.T, s storage.Storage, name string) storage.User {
	t.Helper()
	u, err := s.Register(context.Background(), name, "secret")
	if err != nil {
		t.Fatalf("register %q: %v", name, err)
	}
	return u
}

func save(t *testing.T, s storage.Storage, user storage.UserID, path, body string) storage.Zettel {
	t.Helper()
	z := storage.Zettel{Path: path, Body: body}
	if err := s.SaveNote(context.Background(), user, &z); err != nil {
		t.Fatalf("save %q: %v", path, err)
	}
	if z.ID == 0 {
		t.Fatalf("save %q did not assign an id", path)
	}
	return z
}

func testRegisterAndLogin(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	n, err := s.UserCount(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected zero users, got %d (%v)", n, err)
	}
	u := register(t, s, "alice")
	if u.Name != "alice" || u.ID == 0 {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.PasswordHash == "secret" {
		t.Fatal("password stored in plain text")
	}

	if _, err := s.Register(ctx, "alice", "other"); !errors.Is(err, storage.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := s.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("login returned user %d, want %d", got.ID, u.ID)
	}
	if _, err := s.Login(ctx, "alice", "wrong"); !errors.Is(err, storage.ErrCredentialMismatch) {
		t.Fatalf("expected ErrCredentialMismatch for wrong password, got %v", err)
	}
	if _, err := s.Login(ctx, "bob", "secret"); !errors.Is(err, storage.ErrCredentialMismatch) {
		t.Fatalf("expected ErrCredentialMismatch for unknown user, got %v", err)
	}

	n, err = s.UserCount(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one user, got %d (%v)", n, err)
	}
}

func testLoginSingleUser(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	if _, err := s.LoginSingleUser(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without users, got %v", err)
	}
	u := register(t, s, "alice")
	register(t, s, "bob")
	got, err := s.LoginSingleUser(ctx)
	if err != nil {
		t.Fatalf("login single user: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected first user %d, got %d", u.ID, got.ID)
	}
}

func testSaveAndFetch(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := register(t, s, "alice")
	z := save(t, s, u.ID, "home", "# Home\nwelcome")

	got, err := s.GetNoteByID(ctx, u.ID, z.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Path != "home" || got.Body != "# Home\nwelcome" {
		t.Fatalf("unexpected zettel %+v", got)
	}

	z.Body = "changed"
	if err := s.SaveNote(ctx, u.ID, &z); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = s.GetNoteByPath(ctx, u.ID, "home")
	if err != nil {
		t.Fatalf("get by path: %v", err)
	}
	if got.ID != z.ID || got.Body != "changed" {
		t.Fatalf("unexpected zettel after update %+v", got)
	}

	if _, err := s.GetNoteByID(ctx, u.ID, z.ID+100); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound by id, got %v", err)
	}
	if _, err := s.GetNoteByPath(ctx, u.ID, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound by path, got %v", err)
	}

	other := register(t, s, "bob")
	if _, err := s.GetNoteByID(ctx, other.ID, z.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("zettel leaked across users: %v", err)
	}
}

func testLastVisited(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := register(t, s, "alice")
	z := save(t, s, u.ID, "home", "")

	got, err := s.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.LastVisitedZettel != z.ID {
		t.Fatalf("new zettel should become last visited, got %d want %d", got.LastVisitedZettel, z.ID)
	}

	if err := s.SetLastVisitedNote(ctx, u.ID, 0); err != nil {
		t.Fatalf("clear last visited: %v", err)
	}
	got, err = s.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.LastVisitedZettel != 0 {
		t.Fatalf("expected last visited to be cleared, got %d", got.LastVisitedZettel)
	}
}

func testListAll(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := register(t, s, "alice")
	save(t, s, u.ID, "d", "")
	save(t, s, u.ID, "a/c", "")
	save(t, s, u.ID, "a/b", "")

	headers, err := s.ListOrSearchNotes(ctx, u.ID, storage.SearchOpts{ListAll: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a/b", "a/c", "d"}
	if len(headers) != len(want) {
		t.Fatalf("expected %d headers, got %d", len(want), len(headers))
	}
	for i, h := range headers {
		if h.Path != want[i] {
			t.Fatalf("header %d: expected %q, got %q", i, want[i], h.Path)
		}
		if h.Highlight != "" {
			t.Fatalf("list should not highlight, got %q", h.Highlight)
		}
	}

	if _, err := s.ListOrSearchNotes(ctx, u.ID, storage.SearchOpts{}); !errors.Is(err, storage.ErrInvalidSearch) {
		t.Fatalf("expected ErrInvalidSearch, got %v", err)
	}
}

func testSearch(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := register(t, s, "alice")
	save(t, s, u.ID, "home", "")
	save(t, s, u.ID, "recipes", "a long list of pancake recipes for sunday")

	headers, err := s.ListOrSearchNotes(ctx, u.ID, storage.SearchOpts{Query: "home"})
	if err != nil {
		t.Fatalf("search path: %v", err)
	}
	if len(headers) != 1 || headers[0].Path != "home" || headers[0].Highlight != "" {
		t.Fatalf("unexpected path search result %+v", headers)
	}

	headers, err = s.ListOrSearchNotes(ctx, u.ID, storage.SearchOpts{Query: "pan+cake"})
	if err != nil {
		t.Fatalf("search body: %v", err)
	}
	if len(headers) != 1 || headers[0].Path != "recipes" {
		t.Fatalf("unexpected body search result %+v", headers)
	}
	if headers[0].Highlight != "g list of pancake recipes f" {
		t.Fatalf("unexpected highlight %q", headers[0].Highlight)
	}

	if _, err := s.ListOrSearchNotes(ctx, u.ID, storage.SearchOpts{Query: "(["}); !errors.Is(err, storage.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
}

func testSystemConfig(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	cfg, err := s.LoadSystemConfig(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != storage.DefaultSystemConfig() {
		t.Fatalf("expected default config, got %+v", cfg)
	}

	want := storage.SystemConfig{UserMode: storage.MultiUser, TerminalEditor: "/usr/bin/vi"}
	if err := s.UpdateSystemConfig(ctx, want); err != nil {
		t.Fatalf("update: %v", err)
	}
	cfg, err = s.LoadSystemConfig(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}
