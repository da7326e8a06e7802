package linkcode

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles configures Render.
type Styles struct {
	Link lipgloss.Style
	Code lipgloss.Style
}

// DefaultStyles colours links yellow and draws codes on a yellow background.
func DefaultStyles() Styles {
	return Styles{
		Link: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Code: lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0")).Bold(true),
	}
}

// Render draws the document one line per body line.
func (d Document) Render(s Styles) string {
	var b strings.Builder
	for i, line := range d.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, span := range line {
			switch span.Kind {
			case Link:
				b.WriteString(s.Link.Render(span.Text))
			case Code:
				b.WriteString(s.Code.Render(span.Text))
			default:
				b.WriteString(span.Text)
			}
		}
	}
	return b.String()
}

// Text returns the document without styling.
func (d Document) Text() string {
	var b strings.Builder
	for i, line := range d.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, span := range line {
			b.WriteString(span.Text)
		}
	}
	return b.String()
}
