package app

import (
	"context"

	"github.com/Trangar/zettelkasten/internal/storage"
)

// Env is the read-only environment handed to a layer on every call. Layers
// never change the system config through it; they return a Transition with a
// Config intent instead and the driver applies it.
type Env struct {
	Ctx          context.Context
	Storage      storage.Storage
	Config       storage.SystemConfig
	GlamourStyle string
	Width        int
	Height       int
}

// Layer is one page of the terminal front end. The set of layers is closed:
// only *Login, *Register, *Zettel, *Search, *List and *ConfigPage implement
// it, and the stack dispatches to them with a single type switch.
type Layer interface {
	isLayer()
}

func (*Login) isLayer() {}
func (*Register) isLayer() {}
func (*Zettel) isLayer() {}
func (*Search) isLayer() {}
func (*List) isLayer() {}
func (*ConfigPage) isLayer() {}

// TransitionKind says how the stack changes after a layer handled an event.
type TransitionKind int

const (
	// TransitionNone keeps the current page.
	TransitionNone TransitionKind = iota
	// TransitionPop returns to the page below the current one.
	TransitionPop
	// TransitionPush opens a page on top of the current one.
	TransitionPush
	// TransitionReplace drops every page and starts over with a new root.
	TransitionReplace
	// TransitionExit ends the program.
	TransitionExit
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionPop:
		return "pop"
	case TransitionPush:
		return "push"
	case TransitionReplace:
		return "replace"
	case TransitionExit:
		return "exit"
	default:
		return "none"
	}
}

// Transition is the result of a layer step.
type Transition struct {
	Kind  TransitionKind
	Layer Layer
	// Config, when set, replaces the driver's system config before the stack
	// changes.
	Config *storage.SystemConfig
}

func stay() Transition { return Transition{} }

func pop() Transition { return Transition{Kind: TransitionPop} }

func push(l Layer) Transition { return Transition{Kind: TransitionPush, Layer: l} }

func replace(l Layer) Transition { return Transition{Kind: TransitionReplace, Layer: l} }

func exit() Transition { return Transition{Kind: TransitionExit} }
