package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Trangar/zettelkasten/internal/linkcode"
	"github.com/Trangar/zettelkasten/internal/storage"
	"github.com/Trangar/zettelkasten/internal/storage/memory"
)

type missingNotes struct {
	*memory.Store
}

func (missingNotes) GetNoteByID(_ context.Context, _ storage.UserID, id storage.ZettelID) (storage.Zettel, error) {
	return storage.Zettel{}, storage.ErrNotFound
}

type flakyNotes struct {
	*memory.Store
}

func (flakyNotes) GetNoteByID(context.Context, storage.UserID, storage.ZettelID) (storage.Zettel, error) {
	return storage.Zettel{}, errors.New("connection reset")
}

func linkBody(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[note %d](n%d)\n", i, i)
	}
	return b.String()
}

func TestZettelShowsLastVisited(t *testing.T) {
	store := memory.New()
	u := mustRegister(t, store, "alice", "secret")
	mustSave(t, store, u.ID, "recipes", "# Pancakes\n\nflour, eggs, milk")

	m := newTestModel(t, store, autoLogin(""))
	z := topZettel(t, m)
	if z.Note().Path != "recipes" {
		t.Fatalf("expected last visited zettel, got %q", z.Note().Path)
	}
	if z.title != "recipes · Pancakes" {
		t.Fatalf("unexpected title %q", z.title)
	}
	if !strings.Contains(m.View(), "flour, eggs, milk") {
		t.Fatal("expected the body in the view")
	}
}

func TestZettelFollowLinks(t *testing.T) {
	store := memory.New()
	u := mustRegister(t, store, "alice", "secret")
	start := mustSave(t, store, u.ID, "start", "[config](sys:config) [broken](sys:nope) [other]")
	other := mustSave(t, store, u.ID, "other", "the other zettel")
	if err := store.SetLastVisitedNote(context.Background(), u.ID, start.ID); err != nil {
		t.Fatalf("set last visited: %v", err)
	}

	m := newTestModel(t, store, autoLogin(""))
	send(t, m, runes("f"))
	if !topZettel(t, m).LinkMode() {
		t.Fatal("f should enter link mode")
	}
	if !strings.Contains(m.View(), "[a]") {
		t.Fatal("expected link codes in link mode")
	}

	send(t, m, runes("a"))
	if _, ok := m.Stack().Top().(*ConfigPage); !ok || m.Stack().Len() != 2 {
		t.Fatalf("expected config page pushed, got %T (%d pages)", m.Stack().Top(), m.Stack().Len())
	}
	send(t, m, escKey)
	if m.Stack().Len() != 1 || topZettel(t, m).LinkMode() {
		t.Fatal("esc should return to the zettel outside of link mode")
	}

	send(t, m, runes("f"), runes("b"))
	if !m.AlertOpen() {
		t.Fatal("unknown system pages should raise an alert")
	}
	send(t, m, enterKey)

	send(t, m, runes("f"), runes("d"))
	z := topZettel(t, m)
	if m.Stack().Len() != 1 || z.Note().ID != other.ID {
		t.Fatalf("expected other zettel as the only page, got %+v", z.Note())
	}
	if got := storedUser(t, store, u.ID).LastVisitedZettel; got != other.ID {
		t.Fatalf("expected last visited %d, got %d", other.ID, got)
	}
}

func TestZettelFollowUnsavedPath(t *testing.T) {
	store := memory.New()
	u := mustRegister(t, store, "alice", "secret")
	start := mustSave(t, store, u.ID, "start", "see [missing]")

	m := newTestModel(t, store, autoLogin(""))
	send(t, m, runes("f"), runes("a"))
	z := topZettel(t, m)
	if !z.Note().IsNew() || z.Note().Path != "missing" {
		t.Fatalf("expected an unsaved zettel at missing, got %+v", z.Note())
	}
	if !strings.Contains(z.title, "(new)") {
		t.Fatalf("expected new marker in title %q", z.title)
	}
	if got := storedUser(t, store, u.ID).LastVisitedZettel; got != start.ID {
		t.Fatalf("following to an unsaved zettel must not change last visited, got %d", got)
	}
}

func TestZettelLinkModeMiss(t *testing.T) {
	store := memory.New()
	u := mustRegister(t, store, "alice", "secret")
	mustSave(t, store, u.ID, "start", "[one] [two]")

	m := newTestModel(t, store, autoLogin(""))
	send(t, m, runes("f"), runes("z"))
	z := topZettel(t, m)
	if z.LinkMode() || z.Note().Path != "start" {
		t.Fatal("an unknown code should leave link mode and stay on the page")
	}
	if !strings.Contains(z.status, "No link") {
		t.Fatalf("expected a status message, got %q", z.status)
	}

	send(t, m, runes("f"), backspaceKey)
	if topZettel(t, m).LinkMode() {
		t.Fatal("backspace should leave link mode")
	}
}

func TestZettelMissingLastVisited(t *testing.T) {
	base := memory.New()
	u := mustRegister(t, base, "alice", "secret")
	if err := base.SetLastVisitedNote(context.Background(), u.ID, 42); err != nil {
		t.Fatalf("set last visited: %v", err)
	}

	m := newTestModel(t, missingNotes{base}, autoLogin(""))
	if !m.AlertOpen() {
		t.Fatal("expected an alert for the missing zettel")
	}
	if !strings.Contains(strings.Join(m.alert.lines, "\n"), "zettel ID 42 not found") {
		t.Fatalf("unexpected alert %+v", m.alert)
	}
	if got := storedUser(t, base, u.ID).LastVisitedZettel; got != 0 {
		t.Fatalf("expected last visited to be cleared, got %d", got)
	}

	send(t, m, enterKey)
	if m.AlertOpen() {
		t.Fatal("expected alert to be dismissed")
	}
	z := topZettel(t, m)
	if !z.welcome || z.Note().Path != welcomePath {
		t.Fatalf("expected the welcome page after the alert, got %+v", z.Note())
	}
}

func TestZettelLastVisitedFetchError(t *testing.T) {
	base := memory.New()
	u := mustRegister(t, base, "alice", "secret")
	saved := mustSave(t, base, u.ID, "start", "body")

	m := newTestModel(t, flakyNotes{base}, autoLogin(""))
	if !m.AlertOpen() {
		t.Fatal("expected an alert when the zettel cannot be fetched")
	}
	want := fmt.Sprintf("zettel ID %d not found", saved.ID)
	if !strings.Contains(strings.Join(m.alert.lines, "\n"), want) {
		t.Fatalf("expected %q in alert, got %+v", want, m.alert)
	}
	if got := storedUser(t, base, u.ID).LastVisitedZettel; got != 0 {
		t.Fatalf("expected last visited to be cleared, got %d", got)
	}

	send(t, m, enterKey)
	if z := topZettel(t, m); !z.welcome {
		t.Fatalf("expected the welcome page after the alert, got %+v", z.Note())
	}
}

func TestZettelTooManyLinks(t *testing.T) {
	store := memory.New()
	u := mustRegister(t, store, "alice", "secret")
	k := len(linkcode.Alphabet(zettelKeys))
	mustSave(t, store, u.ID, "start", linkBody(k*k+1))

	m := newTestModel(t, store, autoLogin(""))
	if m.AlertOpen() {
		t.Fatalf("unexpected alert %+v", m.alert)
	}
	if !strings.Contains(m.View(), "[note 0](n0)") {
		t.Fatal("outside link mode the body should be shown as plain text")
	}

	r := func() (r any) {
		defer func() { r = recover() }()
		send(t, m, runes("f"))
		return nil
	}()
	err, ok := r.(error)
	if !ok || !errors.Is(err, linkcode.ErrTooManyLinks) {
		t.Fatalf("expected link mode to panic with ErrTooManyLinks, got %v", r)
	}
}

func TestZettelPartialCodeSwallowsShortcuts(t *testing.T) {
	store := memory.New()
	u := mustRegister(t, store, "alice", "secret")
	mustSave(t, store, u.ID, "start", linkBody(20))

	m := newTestModel(t, store, autoLogin(""))
	send(t, m, runes("f"), runes("a"))
	if cmd := send(t, m, runes("q")); cmd != nil {
		t.Fatal("q after a partial code must not quit")
	}
	z := topZettel(t, m)
	if m.quitting || z.LinkMode() || z.Note().Path != "start" {
		t.Fatal("a miss should leave link mode and stay on the page")
	}
	if !strings.HasPrefix(z.status, "No link") {
		t.Fatalf("expected a status message, got %q", z.status)
	}

	send(t, m, runes("f"), runes("a"), runes("b"))
	if z := topZettel(t, m); z.Note().Path != "n1" {
		t.Fatalf("expected code ab to open n1, got %q", z.Note().Path)
	}
}

func TestZettelEditWithoutEditor(t *testing.T) {
	store := memory.New()
	mustRegister(t, store, "alice", "secret")

	m := newTestModel(t, store, autoLogin(""))
	send(t, m, runes("e"))
	if !m.AlertOpen() || m.alert.title != "Could not edit zettel" {
		t.Fatalf("expected the no editor notice, got %+v", m.alert)
	}
	if cmd := send(t, m, runes("q")); cmd != nil || !m.AlertOpen() {
		t.Fatal("a notice only offers continue")
	}
	send(t, m, enterKey)
	if m.AlertOpen() {
		t.Fatal("enter should dismiss the notice")
	}
}

func TestZettelStartEdit(t *testing.T) {
	store := memory.New()
	mustRegister(t, store, "alice", "secret")

	m := newTestModel(t, store, autoLogin("/usr/bin/vi"))
	cmd := send(t, m, runes("e"))
	if cmd == nil {
		t.Fatal("expected an exec command for the editor")
	}
	z := topZettel(t, m)
	if z.editing == "" {
		t.Fatal("expected the temp file to be tracked")
	}
	defer os.Remove(z.editing)
	data, err := os.ReadFile(z.editing)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if string(data) != welcomeText {
		t.Fatal("temp file should hold the current body")
	}
}

func TestZettelFinishEditSavesNewZettel(t *testing.T) {
	store := memory.New()
	u := mustRegister(t, store, "alice", "secret")

	m := newTestModel(t, store, autoLogin("/usr/bin/vi"))
	z := topZettel(t, m)
	path := filepath.Join(t.TempDir(), "zettel.md")
	if err := os.WriteFile(path, []byte("# Home\n\nmy notes"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	z.editing = path

	send(t, m, editorFinishedMsg{path: path})
	if m.AlertOpen() {
		t.Fatalf("unexpected alert %+v", m.alert)
	}
	saved, err := store.GetNoteByPath(context.Background(), u.ID, welcomePath)
	if err != nil {
		t.Fatalf("expected saved zettel: %v", err)
	}
	if saved.Body != "# Home\n\nmy notes" {
		t.Fatalf("unexpected body %q", saved.Body)
	}
	if z.Note().ID != saved.ID || z.welcome {
		t.Fatalf("page should now show the saved zettel, got %+v", z.Note())
	}
	if got := storedUser(t, store, u.ID).LastVisitedZettel; got != saved.ID {
		t.Fatalf("expected last visited %d, got %d", saved.ID, got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("temp file should be removed")
	}
}

func TestZettelFinishEditError(t *testing.T) {
	store := memory.New()
	mustRegister(t, store, "alice", "secret")

	m := newTestModel(t, store, autoLogin("/usr/bin/vi"))
	z := topZettel(t, m)
	path := filepath.Join(t.TempDir(), "zettel.md")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	z.editing = path

	send(t, m, editorFinishedMsg{path: path, err: errors.New("exit status 1")})
	if !m.AlertOpen() {
		t.Fatal("an editor failure should raise an alert")
	}
	if n, _ := store.ListOrSearchNotes(context.Background(), z.User().ID, storage.SearchOpts{ListAll: true}); len(n) != 0 {
		t.Fatal("nothing should be saved after an editor failure")
	}
}

func TestZettelPreviewAndCopy(t *testing.T) {
	store := memory.New()
	u := mustRegister(t, store, "alice", "secret")
	mustSave(t, store, u.ID, "start", "# Title\n\nbody text")

	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, store, autoLogin(""))
	send(t, m, runes("p"))
	z := topZettel(t, m)
	if !z.preview {
		t.Fatal("p should turn on the preview")
	}
	send(t, m, runes("f"))
	if z.preview || !z.LinkMode() {
		t.Fatal("link mode should turn the preview off")
	}
	send(t, m, escKey, runes("y"))
	if copied != "# Title\n\nbody text" {
		t.Fatalf("expected the raw body on the clipboard, got %q", copied)
	}
	if !strings.HasPrefix(z.status, "Copied zettel") {
		t.Fatalf("unexpected status %q", z.status)
	}
}

func TestZettelLogout(t *testing.T) {
	store := memory.New()
	mustRegister(t, store, "alice", "secret")

	m := newTestModel(t, store, autoLogin(""))
	send(t, m, runes("o"))
	if _, ok := m.Stack().Top().(*Login); !ok || m.Stack().Len() != 1 {
		t.Fatalf("expected login page after logout, got %T", m.Stack().Top())
	}
}
