package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type alertAction struct {
	key   string
	label string
}

// alert is a blocking modal drawn over the current page. While it is open
// every key except its actions is ignored.
type alert struct {
	title   string
	lines   []string
	actions []alertAction
}

var (
	continueAction = alertAction{key: "enter", label: "Continue"}
	quitAction     = alertAction{key: "q", label: "Quit"}
)

// alertFor turns an error from a layer into the modal shown to the user.
func alertFor(err error) *alert {
	var notice *Notice
	if errors.As(err, &notice) {
		return &alert{title: notice.Title, lines: notice.Lines, actions: []alertAction{continueAction}}
	}
	return &alert{
		title:   "Could not render page",
		lines:   strings.Split(err.Error(), "\n"),
		actions: []alertAction{quitAction, continueAction},
	}
}

func (a *alert) allows(key string) bool {
	for _, action := range a.actions {
		if action.key == key {
			return true
		}
	}
	return false
}

func (a *alert) view(width, height int) string {
	boxWidth := clamp(width-8, 20, 72)
	var b strings.Builder
	b.WriteString(titleStyle.Render(a.title))
	b.WriteString("\n\n")
	for _, line := range a.lines {
		b.WriteString(lipgloss.NewStyle().Width(boxWidth - 4).Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	hints := make([]string, 0, len(a.actions))
	for _, action := range a.actions {
		hints = append(hints, keyStyle.Render("<"+action.key+">")+" "+action.label)
	}
	b.WriteString(strings.Join(hints, "  "))

	box := alertStyle.Width(boxWidth).Render(b.String())
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
