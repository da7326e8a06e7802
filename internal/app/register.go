package app

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Trangar/zettelkasten/internal/storage"
)

const (
	registerUsername = iota
	registerPassword
	registerRepeat
)

// Register creates a new account.
type Register struct {
	form form
	err  error
}

// NewRegister returns an empty registration form.
func NewRegister() *Register {
	return &Register{form: newForm(
		[]string{"Username", "Password", "Repeat password"},
		[]bool{false, true, true},
	)}
}

// Err is the error shown below the form, if any.
func (r *Register) Err() error { return r.err }

// prepare sends the user back to the login page when registration is closed.
func (r *Register) prepare(env Env) (Transition, error) {
	allowed, err := canRegister(env)
	if err != nil {
		return stay(), err
	}
	if !allowed {
		return replace(NewLogin()), nil
	}
	return stay(), nil
}

func (r *Register) update(env Env, msg tea.Msg) (Transition, tea.Cmd, error) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return stay(), r.form.input(msg), nil
	}
	switch key.String() {
	case "esc":
		return exit(), nil, nil
	case "ctrl+l":
		return replace(NewLogin()), nil, nil
	case "shift+tab", "up":
		r.form.setFocus(r.form.focus - 1)
		return stay(), nil, nil
	case "tab", "down":
		r.form.setFocus(r.form.focus + 1)
		return stay(), nil, nil
	case "enter":
		if !r.form.onLast() {
			r.form.setFocus(r.form.focus + 1)
			return stay(), nil, nil
		}
		return r.submit(env), nil, nil
	}
	return stay(), r.form.input(msg), nil
}

func (r *Register) submit(env Env) Transition {
	username := strings.TrimSpace(r.form.value(registerUsername))
	password := r.form.value(registerPassword)
	switch {
	case username == "":
		r.err = &RequiredFieldError{Field: "username"}
		r.form.setFocus(registerUsername)
		return stay()
	case password == "":
		r.err = &RequiredFieldError{Field: "password"}
		r.form.setFocus(registerPassword)
		return stay()
	case password != r.form.value(registerRepeat):
		r.err = ErrPasswordsDontMatch
		r.form.clear(registerRepeat)
		return stay()
	}

	user, err := env.Storage.Register(env.Ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			r.err = ErrRegisterFailed
			r.form.setFocus(registerUsername)
		} else {
			logError("register failed", err, "user", username)
			r.err = &StorageError{Err: err}
		}
		return stay()
	}
	appLog.Info("user registered", "user", user.Name)
	return replace(NewZettel(user, nil))
}

func (r *Register) view(env Env) string {
	width, height := bodySize(env.Width, env.Height)
	var b strings.Builder
	b.WriteString(r.form.view(width))
	if r.err != nil {
		b.WriteString("\n" + errorStyle.Render(r.err.Error()) + "\n")
	}
	footer := "enter: next/submit, tab: switch field, ctrl+l: login, esc: exit"
	return frame(formPane, "Register", padBlock(b.String(), width, height), footer, env.Width, env.Height)
}
