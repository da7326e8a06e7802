package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Trangar/zettelkasten/internal/storage"
)

// Search runs a regular expression over the paths and bodies of the user's
// zettels as the query is typed.
type Search struct {
	user     storage.User
	input    textinput.Model
	query    string
	results  []storage.ZettelHeader
	selected int
	err      error
}

// NewSearch opens an empty search page.
func NewSearch(user storage.User) *Search {
	in := newInput(false)
	in.Placeholder = "regular expression"
	in.Focus()
	return &Search{user: user, input: in}
}

// Results returns the matches for the current query.
func (s *Search) Results() []storage.ZettelHeader { return s.results }

// Err returns the inline error for the current query, if any.
func (s *Search) Err() error { return s.err }

func (s *Search) prepare(env Env) (Transition, error) {
	return stay(), nil
}

func (s *Search) update(env Env, msg tea.Msg) (Transition, tea.Cmd, error) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return stay(), nil, nil
	}
	switch key.String() {
	case "esc":
		return pop(), nil, nil
	case "up":
		s.selected = clamp(s.selected-1, 0, max(len(s.results)-1, 0))
		return stay(), nil, nil
	case "down":
		s.selected = clamp(s.selected+1, 0, max(len(s.results)-1, 0))
		return stay(), nil, nil
	case "enter":
		if len(s.results) == 0 {
			return stay(), nil, nil
		}
		t, err := openHeader(env, s.user, s.results[s.selected].ID)
		return t, nil, err
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if err := s.requery(env); err != nil {
		return stay(), cmd, err
	}
	return stay(), cmd, nil
}

// requery refreshes the results when the query text changed. An invalid
// pattern is kept as an inline error.
func (s *Search) requery(env Env) error {
	query := s.input.Value()
	if query == s.query {
		return nil
	}
	s.query = query
	s.selected = 0
	s.err = nil
	if strings.TrimSpace(query) == "" {
		s.results = nil
		return nil
	}
	results, err := env.Storage.ListOrSearchNotes(env.Ctx, s.user.ID, storage.SearchOpts{Query: query})
	switch {
	case errors.Is(err, storage.ErrInvalidPattern):
		s.results = nil
		s.err = err
		return nil
	case err != nil:
		s.results = nil
		return err
	}
	s.results = results
	return nil
}

func (s *Search) view(env Env) string {
	width, height := bodySize(env.Width, env.Height)
	var b strings.Builder
	s.input.Width = max(width-10, 1)
	b.WriteString(mutedStyle.Render("Search: ") + s.input.View() + "\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(truncate(s.err.Error(), width)))
	}
	b.WriteString("\n")

	switch {
	case strings.TrimSpace(s.query) == "":
		b.WriteString(mutedStyle.Render("Type to search"))
	case len(s.results) == 0 && s.err == nil:
		b.WriteString(mutedStyle.Render("No matches"))
	}

	// Two rows per result: the path and the highlighted excerpt.
	rows := max((height-2)/2, 1)
	offset := 0
	if s.selected >= rows {
		offset = s.selected - rows + 1
	}
	for i, r := range s.results {
		if i < offset || i >= offset+rows {
			continue
		}
		path := truncate(r.Path, width-2)
		if i == s.selected {
			b.WriteString(selectedStyle.Render("> "+path) + "\n")
		} else {
			b.WriteString("  " + path + "\n")
		}
		highlight := strings.ReplaceAll(r.Highlight, "\n", " ")
		b.WriteString("    " + mutedStyle.Render(truncate(highlight, width-4)) + "\n")
	}
	footer := "up/down: select, enter: open zettel, esc: back"
	return frame(paneStyle, "Search", b.String(), footer, env.Width, env.Height)
}
