package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Trangar/zettelkasten/internal/linkcode"
	"github.com/Trangar/zettelkasten/internal/storage"
)

// Zettel shows a single note.
//
// The note is resolved when the page is first prepared: an explicit note wins,
// then the user's last visited zettel, then the built-in welcome page. In
// link-follow mode every link gets a short code; typing a complete code opens
// its target.
type Zettel struct {
	user    storage.User
	note    storage.Zettel
	loaded  bool
	welcome bool
	title   string

	viewport viewport.Model
	width    int
	height   int

	linkMode bool
	doc      linkcode.Document
	buffer   *linkcode.Buffer
	preview  bool

	// editing is the temp file handed to the external editor, "" when idle.
	editing string
	status  string
}

// NewZettel opens a zettel page for user. A nil note means the page picks the
// note itself.
func NewZettel(user storage.User, note *storage.Zettel) *Zettel {
	z := &Zettel{user: user, viewport: viewport.New(0, 0)}
	if note != nil {
		z.note = *note
		z.loaded = true
	}
	return z
}

// Note returns the zettel being shown.
func (z *Zettel) Note() storage.Zettel { return z.note }

// User returns the logged in user.
func (z *Zettel) User() storage.User { return z.user }

// LinkMode reports whether typed letters are read as link codes.
func (z *Zettel) LinkMode() bool { return z.linkMode }

func (z *Zettel) prepare(env Env) (Transition, error) {
	if !z.loaded {
		if err := z.load(env); err != nil {
			return stay(), err
		}
	}
	z.resize(env)
	z.refresh(env)
	return stay(), nil
}

func (z *Zettel) load(env Env) error {
	id := z.user.LastVisitedZettel
	if id == 0 {
		z.note = storage.Zettel{Path: welcomePath, Body: welcomeText}
		z.welcome = true
		z.loaded = true
		return nil
	}
	note, err := env.Storage.GetNoteByID(env.Ctx, z.user.ID, id)
	if err == nil {
		z.note = note
		z.loaded = true
		return nil
	}
	// Forget the stale id so the next attempt falls back to the welcome page.
	z.user.LastVisitedZettel = 0
	if clearErr := env.Storage.SetLastVisitedNote(env.Ctx, z.user.ID, 0); clearErr != nil {
		return fmt.Errorf("clear last visited zettel: %w", clearErr)
	}
	return &ZettelNotFoundError{ID: id, Err: err}
}

func (z *Zettel) resize(env Env) {
	w, h := bodySize(env.Width, env.Height)
	if w == z.width && h == z.height {
		return
	}
	z.width, z.height = w, h
	z.viewport.Width = w
	z.viewport.Height = h
}

// refresh re-encodes the body and updates the viewport content. Link codes
// are rebuilt on every pass while link-follow mode is active.
func (z *Zettel) refresh(env Env) {
	z.title = z.frameTitle()
	if z.preview && !z.linkMode {
		z.viewport.SetContent(renderMarkdown(z.note.Body, env.GlamourStyle, z.width))
		return
	}
	doc, err := linkcode.Encode(z.note.Body, zettelKeys, z.linkMode)
	if err != nil {
		if z.linkMode {
			panic(err)
		}
		z.doc = linkcode.Document{}
		z.viewport.SetContent(z.note.Body)
		return
	}
	z.doc = doc
	if z.linkMode {
		z.buffer = linkcode.NewBuffer(doc.CodeLen)
	}
	z.viewport.SetContent(doc.Render(linkStyles))
}

func (z *Zettel) frameTitle() string {
	if z.welcome {
		return "Welcome"
	}
	title := z.note.Path
	if title == "" {
		title = "(untitled)"
	}
	if h := firstHeading(z.note.Body); h != "" && !strings.EqualFold(h, z.note.Path) {
		title += " · " + h
	}
	if z.note.IsNew() {
		title += " (new)"
	}
	return title
}

func (z *Zettel) update(env Env, msg tea.Msg) (Transition, tea.Cmd, error) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		z.resize(env)
		z.refresh(env)
		return stay(), nil, nil
	case editorFinishedMsg:
		return z.finishEdit(env, msg)
	case tea.KeyMsg:
		return z.handleKey(env, msg)
	}
	return stay(), nil, nil
}

func (z *Zettel) handleKey(env Env, msg tea.KeyMsg) (Transition, tea.Cmd, error) {
	key := msg.String()
	if z.linkMode {
		switch {
		case key == "esc" || key == "backspace":
			z.leaveLinkMode(env)
			return stay(), nil, nil
		case isCodeRune(msg):
			return z.typeCode(env, msg.Runes[0])
		case msg.Type == tea.KeyRunes && z.buffer != nil && z.buffer.Len() > 0:
			// A partial code swallows the rest of the keystroke.
			z.leaveLinkMode(env)
			z.status = fmt.Sprintf("No link %q", key)
			return stay(), nil, nil
		}
	}

	z.status = ""
	switch key {
	case "q":
		return exit(), nil, nil
	case "e":
		cmd, err := z.startEdit(env)
		return stay(), cmd, err
	case "c":
		return push(NewConfigPage(env.Config)), nil, nil
	case "f":
		z.linkMode = !z.linkMode
		if z.linkMode {
			z.preview = false
		}
		z.refresh(env)
	case "l":
		list, err := NewList(env, z.user)
		if err != nil {
			return stay(), nil, err
		}
		return push(list), nil, nil
	case "s":
		return push(NewSearch(z.user)), nil, nil
	case "o":
		appLog.Info("user logged out", "user", z.user.Name)
		return replace(NewLogin()), nil, nil
	case "p":
		z.preview = !z.preview
		if z.preview {
			z.linkMode = false
		}
		z.refresh(env)
	case "y":
		z.status = copyToClipboard(z.note.Body)
	case "up", "k":
		z.viewport.LineUp(1)
	case "down", "j":
		z.viewport.LineDown(1)
	case "pgup":
		z.viewport.ViewUp()
	case "pgdown", " ":
		z.viewport.ViewDown()
	case "home", "g":
		z.viewport.GotoTop()
	case "end", "G":
		z.viewport.GotoBottom()
	}
	return stay(), nil, nil
}

// isCodeRune reports whether msg is a single letter that can be part of a
// link code.
func isCodeRune(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 || msg.Alt {
		return false
	}
	r := msg.Runes[0]
	return r >= 'a' && r <= 'z' && !strings.ContainsRune(zettelKeys, r)
}

func (z *Zettel) leaveLinkMode(env Env) {
	z.linkMode = false
	z.buffer = nil
	z.refresh(env)
}

func (z *Zettel) typeCode(env Env, r rune) (Transition, tea.Cmd, error) {
	code, complete := z.buffer.Push(r)
	if !complete {
		return stay(), nil, nil
	}
	target, ok := z.doc.Lookup(code)
	z.leaveLinkMode(env)
	if !ok {
		z.status = fmt.Sprintf("No link %q", code)
		return stay(), nil, nil
	}
	t, err := z.follow(env, target)
	return t, nil, err
}

// follow opens a link target. sys: targets are system pages, anything else is
// a zettel path; a path without a zettel opens an empty unsaved one.
func (z *Zettel) follow(env Env, target string) (Transition, error) {
	if page, ok := strings.CutPrefix(target, "sys:"); ok {
		switch page {
		case "config":
			return push(NewConfigPage(env.Config)), nil
		default:
			return stay(), &UnknownSysPageError{Page: page}
		}
	}

	note, err := env.Storage.GetNoteByPath(env.Ctx, z.user.ID, target)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		note = storage.Zettel{Path: target}
	case err != nil:
		return stay(), fmt.Errorf("open %q: %w", target, err)
	}
	user := z.user
	if !note.IsNew() {
		if err := env.Storage.SetLastVisitedNote(env.Ctx, user.ID, note.ID); err != nil {
			return stay(), fmt.Errorf("set last visited zettel: %w", err)
		}
		user.LastVisitedZettel = note.ID
	}
	return replace(NewZettel(user, &note)), nil
}

func (z *Zettel) view(env Env) string {
	style := notePane
	footer := "q: exit, e: edit, c: config, f: follow link, l: list, s: search, p: preview, y: copy, o: log out"
	if z.linkMode {
		style = linkModePane
		typed := ""
		if z.buffer != nil && z.buffer.Len() > 0 {
			typed = fmt.Sprintf(" (%d/%d typed)", z.buffer.Len(), z.buffer.Size())
		}
		footer = "Type a link code to follow it" + typed + ", esc: cancel"
	}
	if z.status != "" {
		footer = z.status + " | " + footer
	} else if summary := metricsSummary(z.note.Body); summary != "" && !z.linkMode {
		footer = summary + " | " + footer
	}
	return frame(style, z.title, z.viewport.View(), footer, env.Width, env.Height)
}
