package app

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/Trangar/zettelkasten/internal/storage"
)

// List shows every zettel of the user with a live path filter.
type List struct {
	user     storage.User
	headers  []storage.ZettelHeader
	filter   textinput.Model
	selected int
}

// NewList loads all zettels of user, sorted by path.
func NewList(env Env, user storage.User) (*List, error) {
	headers, err := env.Storage.ListOrSearchNotes(env.Ctx, user.ID, storage.SearchOpts{ListAll: true})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(headers, func(i, j int) bool { return headers[i].Path < headers[j].Path })
	filter := newInput(false)
	filter.Placeholder = "filter by path"
	filter.Focus()
	return &List{user: user, headers: headers, filter: filter}, nil
}

// Filtered returns the headers whose path contains the filter text, ignoring
// case.
func (l *List) Filtered() []storage.ZettelHeader {
	value := l.filter.Value()
	if strings.TrimSpace(value) == "" {
		return l.headers
	}
	needle := strings.ToLower(value)
	var out []storage.ZettelHeader
	for _, h := range l.headers {
		if strings.Contains(strings.ToLower(h.Path), needle) {
			out = append(out, h)
		}
	}
	return out
}

// Selected is the index of the highlighted row in Filtered.
func (l *List) Selected() int { return l.selected }

func (l *List) prepare(env Env) (Transition, error) {
	return stay(), nil
}

func (l *List) update(env Env, msg tea.Msg) (Transition, tea.Cmd, error) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return stay(), nil, nil
	}
	entries := l.Filtered()
	switch key.String() {
	case "esc":
		return pop(), nil, nil
	case "up":
		l.selected = clamp(l.selected-1, 0, max(len(entries)-1, 0))
		return stay(), nil, nil
	case "down":
		l.selected = clamp(l.selected+1, 0, max(len(entries)-1, 0))
		return stay(), nil, nil
	case "enter":
		if len(entries) == 0 {
			return stay(), nil, nil
		}
		t, err := openHeader(env, l.user, entries[l.selected].ID)
		if err != nil {
			logError("open zettel from list", err, "id", int64(entries[l.selected].ID))
			return stay(), nil, &Notice{Title: "Error", Lines: []string{"Zettel not found", err.Error()}}
		}
		return t, nil, nil
	}

	var cmd tea.Cmd
	l.filter, cmd = l.filter.Update(msg)
	l.selected = clamp(l.selected, 0, max(len(l.Filtered())-1, 0))
	return stay(), cmd, nil
}

// openHeader fetches a zettel by id, records it as last visited and replaces
// the stack with it. List and Search share it.
func openHeader(env Env, user storage.User, id storage.ZettelID) (Transition, error) {
	note, err := env.Storage.GetNoteByID(env.Ctx, user.ID, id)
	if err != nil {
		return stay(), err
	}
	if err := env.Storage.SetLastVisitedNote(env.Ctx, user.ID, note.ID); err != nil {
		return stay(), err
	}
	user.LastVisitedZettel = note.ID
	return replace(NewZettel(user, &note)), nil
}

// listEntry is one rendered row: the path segments shared with the previous
// row are replaced by indentation.
type listEntry struct {
	Indent int
	Text   string
}

// groupEntries compares each path with the one before it, segment by segment
// and ignoring case, and keeps only the part that differs. The last segment is
// always shown.
func groupEntries(paths []string) []listEntry {
	out := make([]listEntry, 0, len(paths))
	var prev []string
	for _, p := range paths {
		parts := strings.Split(p, "/")
		common := 0
		for common < len(parts)-1 && common < len(prev) && strings.EqualFold(parts[common], prev[common]) {
			common++
		}
		out = append(out, listEntry{Indent: common, Text: strings.Join(parts[common:], "/")})
		prev = parts
	}
	return out
}

func (l *List) view(env Env) string {
	width, height := bodySize(env.Width, env.Height)
	entries := l.Filtered()
	paths := make([]string, len(entries))
	for i, h := range entries {
		paths[i] = h.Path
	}

	var b strings.Builder
	l.filter.Width = max(width-10, 1)
	b.WriteString(mutedStyle.Render("Filter: ") + l.filter.View() + "\n\n")
	rows := height - 2
	offset := 0
	if l.selected >= rows {
		offset = l.selected - rows + 1
	}
	if len(entries) == 0 {
		b.WriteString(mutedStyle.Render("No zettels"))
	}
	for i, e := range groupEntries(paths) {
		if i < offset || i >= offset+rows {
			continue
		}
		line := strings.Repeat("  ", e.Indent) + e.Text
		line = runewidth.Truncate(line, width-2, "…")
		if i == l.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	footer := "up/down: select, enter: open zettel, esc: back"
	return frame(paneStyle, "Zettels", b.String(), footer, env.Width, env.Height)
}
