package app

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrPopRoot is the panic value raised when a layer asks to pop the root page.
var ErrPopRoot = errors.New("app: cannot pop the root layer")

// Stack is the non-empty list of open pages. The last element is shown.
type Stack struct {
	layers []Layer
}

// NewStack starts a stack with root as its only page.
func NewStack(root Layer) *Stack {
	if root == nil {
		panic("app: nil root layer")
	}
	return &Stack{layers: []Layer{root}}
}

// Top returns the page currently shown.
func (s *Stack) Top() Layer { return s.layers[len(s.layers)-1] }

// Len returns the number of open pages.
func (s *Stack) Len() int { return len(s.layers) }

// Layers returns the pages from root to top.
func (s *Stack) Layers() []Layer {
	return append([]Layer(nil), s.layers...)
}

// Apply changes the stack as t describes and reports whether the program
// should exit. Popping the root page is a programming error and panics with
// ErrPopRoot.
func (s *Stack) Apply(t Transition) (exit bool) {
	switch t.Kind {
	case TransitionNone:
	case TransitionPop:
		if len(s.layers) == 1 {
			panic(ErrPopRoot)
		}
		s.layers[len(s.layers)-1] = nil
		s.layers = s.layers[:len(s.layers)-1]
	case TransitionPush:
		if t.Layer == nil {
			panic("app: push of nil layer")
		}
		s.layers = append(s.layers, t.Layer)
	case TransitionReplace:
		if t.Layer == nil {
			panic("app: replace with nil layer")
		}
		s.layers = []Layer{t.Layer}
	case TransitionExit:
		return true
	default:
		panic(fmt.Sprintf("app: unknown transition %d", t.Kind))
	}
	return false
}

// Prepare lets the top page load whatever it needs before it is drawn. It runs
// after every change to the stack.
func (s *Stack) Prepare(env Env) (Transition, error) {
	switch l := s.Top().(type) {
	case *Login:
		return l.prepare(env)
	case *Register:
		return l.prepare(env)
	case *Zettel:
		return l.prepare(env)
	case *Search:
		return l.prepare(env)
	case *List:
		return l.prepare(env)
	case *ConfigPage:
		return l.prepare(env)
	default:
		panic(fmt.Sprintf("app: unknown layer %T", l))
	}
}

// Update hands one event to the top page.
func (s *Stack) Update(env Env, msg tea.Msg) (Transition, tea.Cmd, error) {
	switch l := s.Top().(type) {
	case *Login:
		return l.update(env, msg)
	case *Register:
		return l.update(env, msg)
	case *Zettel:
		return l.update(env, msg)
	case *Search:
		return l.update(env, msg)
	case *List:
		return l.update(env, msg)
	case *ConfigPage:
		return l.update(env, msg)
	default:
		panic(fmt.Sprintf("app: unknown layer %T", l))
	}
}

// View draws the top page.
func (s *Stack) View(env Env) string {
	switch l := s.Top().(type) {
	case *Login:
		return l.view(env)
	case *Register:
		return l.view(env)
	case *Zettel:
		return l.view(env)
	case *Search:
		return l.view(env)
	case *List:
		return l.view(env)
	case *ConfigPage:
		return l.view(env)
	default:
		panic(fmt.Sprintf("app: unknown layer %T", l))
	}
}
