package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Trangar/zettelkasten/internal/storage"
)

const (
	configRowMode = iota
	configRowEditor
	configRows
)

// ConfigPage edits the system config: the user mode and the terminal editor.
type ConfigPage struct {
	mode   int // index into storage.UserModes
	editor textinput.Model
	row    int
	err    error
}

// NewConfigPage opens the config page with cfg as the initial values.
func NewConfigPage(cfg storage.SystemConfig) *ConfigPage {
	p := &ConfigPage{editor: newInput(false)}
	for i, m := range storage.UserModes {
		if m == cfg.UserMode {
			p.mode = i
		}
	}
	p.editor.Placeholder = "/usr/bin/vim"
	p.editor.SetValue(cfg.TerminalEditor)
	return p
}

// Value returns the config as currently entered on the page.
func (p *ConfigPage) Value() storage.SystemConfig {
	return storage.SystemConfig{
		UserMode:       storage.UserModes[p.mode],
		TerminalEditor: strings.TrimSpace(p.editor.Value()),
	}
}

// Err returns the last save error.
func (p *ConfigPage) Err() error { return p.err }

func (p *ConfigPage) prepare(env Env) (Transition, error) {
	return stay(), nil
}

func (p *ConfigPage) setRow(row int) {
	p.row = clamp(row, 0, configRows-1)
	if p.row == configRowEditor {
		p.editor.Focus()
	} else {
		p.editor.Blur()
	}
}

func (p *ConfigPage) cycleMode(delta int) {
	n := len(storage.UserModes)
	p.mode = ((p.mode+delta)%n + n) % n
}

func (p *ConfigPage) update(env Env, msg tea.Msg) (Transition, tea.Cmd, error) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return stay(), nil, nil
	}
	switch key.String() {
	case "esc":
		return pop(), nil, nil
	case "up", "shift+tab":
		p.setRow(p.row - 1)
		return stay(), nil, nil
	case "down", "tab":
		p.setRow(p.row + 1)
		return stay(), nil, nil
	case "enter":
		if p.row != configRows-1 {
			p.setRow(p.row + 1)
			return stay(), nil, nil
		}
		return p.save(env), nil, nil
	}

	if p.row == configRowMode {
		switch key.String() {
		case "left", "h":
			p.cycleMode(-1)
		case "right", "l", " ":
			p.cycleMode(1)
		}
		return stay(), nil, nil
	}
	var cmd tea.Cmd
	p.editor, cmd = p.editor.Update(msg)
	return stay(), cmd, nil
}

func (p *ConfigPage) save(env Env) Transition {
	cfg := p.Value()
	if err := env.Storage.UpdateSystemConfig(env.Ctx, cfg); err != nil {
		logError("save system config", err)
		p.err = &StorageError{Err: err}
		return stay()
	}
	appLog.Info("system config saved", "user_mode", cfg.UserMode.String(), "terminal_editor", cfg.TerminalEditor)
	t := pop()
	t.Config = &cfg
	return t
}

func (p *ConfigPage) view(env Env) string {
	width, _ := bodySize(env.Width, env.Height)
	var b strings.Builder

	label := func(row int, text string) string {
		if row == p.row {
			return keyStyle.Render(text)
		}
		return mutedStyle.Render(text)
	}

	b.WriteString(label(configRowMode, "User mode:       "))
	mode := storage.UserModes[p.mode].Label()
	if p.row == configRowMode {
		mode = "< " + mode + " >"
	}
	b.WriteString(mode + "\n")

	p.editor.Width = max(width-20, 1)
	b.WriteString(label(configRowEditor, "Terminal editor: ") + p.editor.View() + "\n")
	if warning := checkEditor(strings.TrimSpace(p.editor.Value())); warning != "" {
		b.WriteString(warningStyle.Render(truncate(warning, width)) + "\n")
	}

	if p.err != nil {
		b.WriteString("\n" + errorStyle.Render(truncate(fmt.Sprint(p.err), width)) + "\n")
	}
	footer := "up/down: select, left/right: change mode, enter: next/save, esc: back"
	return frame(formPane, "System config", b.String(), footer, env.Width, env.Height)
}
