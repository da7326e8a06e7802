package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Trangar/zettelkasten/internal/linkcode"
)

var (
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	formPane      = paneStyle.Copy().BorderForeground(lipgloss.Color("62"))
	notePane      = paneStyle.Copy().BorderForeground(lipgloss.Color("62"))
	linkModePane  = paneStyle.Copy().BorderForeground(lipgloss.Color("11"))
	alertStyle    = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("204")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("218")).Bold(true)
)

// linkStyles colours links in a zettel body.
var linkStyles = linkcode.DefaultStyles()
