package app

import (
	"fmt"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

// editorFinishedMsg is sent once the external editor exits and the terminal
// has been restored.
type editorFinishedMsg struct {
	path string
	err  error
}

// errNoEditor is shown when e is pressed before an editor is configured.
var errNoEditor = &Notice{
	Title: "Could not edit zettel",
	Lines: []string{"No terminal editor configured", "Please set one up in sys:config"},
}

// startEdit writes the body to a temp file and hands the terminal to the
// configured editor. bubbletea releases raw mode and the alternate screen for
// the duration and restores both before editorFinishedMsg arrives.
func (z *Zettel) startEdit(env Env) (tea.Cmd, error) {
	editor := env.Config.TerminalEditor
	if editor == "" {
		return nil, errNoEditor
	}
	f, err := os.CreateTemp("", "zettel-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	if _, err := f.WriteString(z.note.Body); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	z.editing = path
	appLog.Debug("starting editor", "editor", editor, "file", path)
	cmd := exec.Command(editor, path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{path: path, err: err}
	}), nil
}

// finishEdit reads the edited file back and saves it. New zettels get their
// id here.
func (z *Zettel) finishEdit(env Env, msg editorFinishedMsg) (Transition, tea.Cmd, error) {
	if msg.path != z.editing {
		return stay(), nil, nil
	}
	z.editing = ""
	defer os.Remove(msg.path)
	if msg.err != nil {
		return stay(), nil, fmt.Errorf("run editor: %w", msg.err)
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		return stay(), nil, fmt.Errorf("read edited zettel: %w", err)
	}

	note := z.note
	note.Body = string(data)
	if err := env.Storage.SaveNote(env.Ctx, z.user.ID, &note); err != nil {
		return stay(), nil, fmt.Errorf("save zettel %q: %w", note.Path, err)
	}
	if z.note.IsNew() {
		z.user.LastVisitedZettel = note.ID
	}
	z.note = note
	z.welcome = false
	z.status = "Saved " + note.Path
	appLog.Info("saved zettel", "path", note.Path, "id", int64(note.ID))
	z.refresh(env)
	return stay(), nil, nil
}

