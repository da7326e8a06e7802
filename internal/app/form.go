package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// form is an ordered set of text fields with one focused field. Login and
// Register build on it.
type form struct {
	labels []string
	fields []textinput.Model
	focus  int
}

func newInput(secret bool) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = InputCharLimit
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '*'
	}
	return in
}

func newForm(labels []string, secret []bool) form {
	f := form{labels: labels, fields: make([]textinput.Model, len(labels))}
	for i := range labels {
		f.fields[i] = newInput(secret[i])
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	f.focus = clamp(i, 0, len(f.fields)-1)
	for j := range f.fields {
		if j == f.focus {
			f.fields[j].Focus()
		} else {
			f.fields[j].Blur()
		}
	}
}

func (f *form) onLast() bool { return f.focus == len(f.fields)-1 }

func (f *form) value(i int) string { return f.fields[i].Value() }

func (f *form) clear(i int) { f.fields[i].SetValue("") }

// input forwards msg to the focused field.
func (f *form) input(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd
}

func (f *form) view(width int) string {
	labelWidth := 0
	for _, l := range f.labels {
		labelWidth = max(labelWidth, len(l))
	}
	var b strings.Builder
	for i, l := range f.labels {
		label := l + ":" + strings.Repeat(" ", labelWidth-len(l)+1)
		if i == f.focus {
			label = keyStyle.Render(label)
		} else {
			label = mutedStyle.Render(label)
		}
		f.fields[i].Width = max(width-labelWidth-3, 1)
		b.WriteString(label + f.fields[i].View())
		b.WriteString("\n")
	}
	return b.String()
}
