package app

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Trangar/zettelkasten/internal/storage"
)

const (
	loginUsername = iota
	loginPassword
)

// Login asks for a username and password.
type Login struct {
	form            form
	err             error
	registerAllowed bool
}

// NewLogin returns an empty login form with the username focused.
func NewLogin() *Login {
	return &Login{form: newForm([]string{"Username", "Password"}, []bool{false, true})}
}

func newLoginWithError(err error) *Login {
	l := NewLogin()
	l.err = err
	return l
}

// Err is the error shown below the form, if any.
func (l *Login) Err() error { return l.err }

func (l *Login) prepare(env Env) (Transition, error) {
	allowed, err := canRegister(env)
	if err != nil {
		return stay(), err
	}
	l.registerAllowed = allowed
	return stay(), nil
}

func (l *Login) update(env Env, msg tea.Msg) (Transition, tea.Cmd, error) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return stay(), l.form.input(msg), nil
	}
	switch key.String() {
	case "esc":
		return exit(), nil, nil
	case "ctrl+r":
		if l.registerAllowed {
			return replace(NewRegister()), nil, nil
		}
		return stay(), nil, nil
	case "shift+tab", "up":
		l.form.setFocus(l.form.focus - 1)
		return stay(), nil, nil
	case "tab", "down":
		l.form.setFocus(l.form.focus + 1)
		return stay(), nil, nil
	case "enter":
		if !l.form.onLast() {
			l.form.setFocus(l.form.focus + 1)
			return stay(), nil, nil
		}
		return l.submit(env), nil, nil
	}
	return stay(), l.form.input(msg), nil
}

func (l *Login) submit(env Env) Transition {
	username := strings.TrimSpace(l.form.value(loginUsername))
	if username == "" {
		l.err = &RequiredFieldError{Field: "username"}
		l.form.setFocus(loginUsername)
		return stay()
	}
	user, err := env.Storage.Login(env.Ctx, username, l.form.value(loginPassword))
	if err != nil {
		if errors.Is(err, storage.ErrCredentialMismatch) {
			l.err = ErrLoginFailed
		} else {
			logError("login failed", err, "user", username)
			l.err = &StorageError{Err: err}
		}
		l.form.clear(loginPassword)
		return stay()
	}
	appLog.Info("user logged in", "user", user.Name)
	return replace(NewZettel(user, nil))
}

func (l *Login) view(env Env) string {
	width, height := bodySize(env.Width, env.Height)
	var b strings.Builder
	b.WriteString(l.form.view(width))
	if l.err != nil {
		b.WriteString("\n" + errorStyle.Render(l.err.Error()) + "\n")
	}
	footer := "enter: next/submit, tab: switch field, esc: exit"
	if l.registerAllowed {
		footer += ", ctrl+r: register"
	}
	return frame(formPane, "Login", padBlock(b.String(), width, height), footer, env.Width, env.Height)
}

// canRegister reports whether new accounts may be created: always in multi
// user mode, otherwise only while there are no users at all.
func canRegister(env Env) (bool, error) {
	if env.Config.UserMode == storage.MultiUser {
		return true, nil
	}
	n, err := env.Storage.UserCount(env.Ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
