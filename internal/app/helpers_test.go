package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Trangar/zettelkasten/internal/storage"
	"github.com/Trangar/zettelkasten/internal/storage/memory"
)

var (
	testUser   = storage.User{ID: 1, Name: "alice"}
	testConfig = storage.DefaultSystemConfig()
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey     = tea.KeyMsg{Type: tea.KeyEnter}
	escKey       = tea.KeyMsg{Type: tea.KeyEsc}
	backspaceKey = tea.KeyMsg{Type: tea.KeyBackspace}
	downKey      = tea.KeyMsg{Type: tea.KeyDown}
	rightKey     = tea.KeyMsg{Type: tea.KeyRight}
)

// send feeds msgs through the driver in order and returns the last command.
func send(t *testing.T, m *Model, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		if next != m {
			t.Fatalf("Update returned a different model")
		}
	}
	return cmd
}

// typeText sends s one rune at a time, like a user typing.
func typeText(t *testing.T, m *Model, s string) {
	t.Helper()
	for _, r := range s {
		send(t, m, runes(string(r)))
	}
}

func newTestModel(t *testing.T, store storage.Storage, cfg storage.SystemConfig) *Model {
	t.Helper()
	m, err := NewModel(context.Background(), cfg, store)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func mustRegister(t *testing.T, store *memory.Store, name, password string) storage.User {
	t.Helper()
	u, err := store.Register(context.Background(), name, password)
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func mustSave(t *testing.T, store *memory.Store, user storage.UserID, path, body string) storage.Zettel {
	t.Helper()
	z := storage.Zettel{Path: path, Body: body}
	if err := store.SaveNote(context.Background(), user, &z); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return z
}

func autoLogin(editor string) storage.SystemConfig {
	return storage.SystemConfig{UserMode: storage.SingleUserAutoLogin, TerminalEditor: editor}
}

func topZettel(t *testing.T, m *Model) *Zettel {
	t.Helper()
	z, ok := m.Stack().Top().(*Zettel)
	if !ok {
		t.Fatalf("expected a zettel page on top, got %T", m.Stack().Top())
	}
	return z
}

func storedUser(t *testing.T, store *memory.Store, id storage.UserID) storage.User {
	t.Helper()
	u, ok := store.User(id)
	if !ok {
		t.Fatalf("user %d missing", id)
	}
	return u
}
