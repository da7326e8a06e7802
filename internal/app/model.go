package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Trangar/zettelkasten/internal/storage"
)

// Model is the bubbletea model driving the layer stack. It owns the system
// config and the alert shown over the current page.
type Model struct {
	ctx          context.Context
	store        storage.Storage
	config       storage.SystemConfig
	glamourStyle string

	width  int
	height int

	stack    *Stack
	alert    *alert
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithGlamourStyle sets the glamour style used by the markdown preview.
func WithGlamourStyle(style string) Option {
	return func(m *Model) { m.glamourStyle = style }
}

// NewModel picks the first page for cfg and prepares it.
func NewModel(ctx context.Context, cfg storage.SystemConfig, store storage.Storage, opts ...Option) (*Model, error) {
	m := &Model{
		ctx:          ctx,
		store:        store,
		config:       cfg,
		glamourStyle: "dark",
		width:        DefaultWidth,
		height:       DefaultHeight,
	}
	for _, opt := range opts {
		opt(m)
	}
	root, err := m.newRootLayer()
	if err != nil {
		return nil, err
	}
	m.stack = NewStack(root)
	m.settle()
	return m, nil
}

// newRootLayer decides where a session starts: registration when nobody has
// an account yet, straight into the zettel view in auto login mode, the login
// form otherwise.
func (m *Model) newRootLayer() (Layer, error) {
	n, err := m.store.UserCount(m.ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if n == 0 {
		return NewRegister(), nil
	}
	if m.config.UserMode == storage.SingleUserAutoLogin {
		user, err := m.store.LoginSingleUser(m.ctx)
		if err != nil {
			logError("auto login failed", err)
			return newLoginWithError(&StorageError{Err: err}), nil
		}
		appLog.Info("user logged in automatically", "user", user.Name)
		return NewZettel(user, nil), nil
	}
	return NewLogin(), nil
}

// Stack exposes the layer stack.
func (m *Model) Stack() *Stack { return m.stack }

// Config returns the current system config.
func (m *Model) Config() storage.SystemConfig { return m.config }

// AlertOpen reports whether a blocking alert is shown.
func (m *Model) AlertOpen() bool { return m.alert != nil }

func (m *Model) env() Env {
	return Env{
		Ctx:          m.ctx,
		Storage:      m.store,
		Config:       m.config,
		GlamourStyle: m.glamourStyle,
		Width:        m.width,
		Height:       m.height,
	}
}

// apply commits t and reports whether the program should exit.
func (m *Model) apply(t Transition) bool {
	if t.Config != nil {
		m.config = *t.Config
	}
	return m.stack.Apply(t)
}

// settle prepares the top page until it stops asking for transitions.
func (m *Model) settle() {
	for i := 0; i < maxSettleSteps; i++ {
		t, err := m.stack.Prepare(m.env())
		if err != nil {
			m.fail(err)
			return
		}
		if t.Kind == TransitionNone {
			if t.Config != nil {
				m.config = *t.Config
			}
			return
		}
		if m.apply(t) {
			m.quitting = true
			return
		}
	}
	m.fail(errors.New("page did not settle"))
}

func (m *Model) fail(err error) {
	var notice *Notice
	if !errors.As(err, &notice) {
		logError("page failed", err, "layer", fmt.Sprintf("%T", m.stack.Top()))
	}
	m.alert = alertFor(err)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.alert != nil {
			return m, nil
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if shouldIgnoreInput(msg) {
			return m, nil
		}
		if m.alert != nil {
			return m.updateAlert(msg)
		}
	}
	if m.alert != nil {
		return m, nil
	}

	t, cmd, err := m.stack.Update(m.env(), msg)
	if err != nil {
		m.fail(err)
		return m, cmd
	}
	if t.Kind == TransitionNone {
		if t.Config != nil {
			m.config = *t.Config
		}
		return m, cmd
	}
	if m.apply(t) {
		m.quitting = true
		return m, tea.Quit
	}
	m.settle()
	if m.quitting {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) updateAlert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if !m.alert.allows(key) {
		return m, nil
	}
	switch key {
	case quitAction.key:
		m.quitting = true
		return m, tea.Quit
	case continueAction.key:
		m.alert = nil
		m.settle()
		if m.quitting {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.alert != nil {
		return m.alert.view(m.width, m.height)
	}
	return m.stack.View(m.env())
}

// Run starts the terminal front end and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, cfg storage.SystemConfig, store storage.Storage, opts ...Option) error {
	m, err := NewModel(ctx, cfg, store, opts...)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
