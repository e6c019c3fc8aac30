package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/base-tetris/internal/engine"
	"github.com/vovakirdan/base-tetris/internal/session"
)

// KeyMap defines the key bindings for the game shell.
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Down     key.Binding
	HardDrop key.Binding
	RotateCW key.Binding
	RotateCC key.Binding
	Hold     key.Binding
	Pause    key.Binding
	Mute     key.Binding
	Home     key.Binding
	Start    key.Binding
	Again    key.Binding
	Quit     key.Binding

	state session.State
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "soft drop"),
		),
		HardDrop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "hard drop"),
		),
		RotateCW: key.NewBinding(
			key.WithKeys("x", "up"),
			key.WithHelp("x/↑", "rotate"),
		),
		RotateCC: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "rotate back"),
		),
		Hold: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "hold"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Home: key.NewBinding(
			key.WithKeys("h", "esc"),
			key.WithHelp("h/esc", "home"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play"),
		),
		Again: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "play again"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ForState returns a copy whose help and enabled bindings match s.
// Bindings that would issue an illegal transition are disabled, so they
// neither match nor show up in help.
func (k KeyMap) ForState(s session.State) KeyMap {
	k.state = s

	playing := s == session.Playing
	for _, b := range []*key.Binding{&k.Left, &k.Right, &k.Down, &k.HardDrop, &k.RotateCW, &k.RotateCC, &k.Hold} {
		b.SetEnabled(playing)
	}
	k.Pause.SetEnabled(s == session.Playing || s == session.Paused)
	k.Home.SetEnabled(s != session.NotStarted)
	k.Start.SetEnabled(s == session.NotStarted)
	k.Again.SetEnabled(s == session.Lost)

	if s == session.Paused {
		k.Pause.SetHelp("p", "resume")
	} else {
		k.Pause.SetHelp("p", "pause")
	}
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	switch k.state {
	case session.NotStarted:
		return []key.Binding{k.Start, k.Mute, k.Quit}
	case session.Paused:
		return []key.Binding{k.Pause, k.Home, k.Mute, k.Quit}
	case session.Lost:
		return []key.Binding{k.Again, k.Home, k.Mute, k.Quit}
	default:
		return []key.Binding{k.Left, k.Right, k.RotateCW, k.HardDrop, k.Hold, k.Pause, k.Mute}
	}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Down, k.HardDrop},
		{k.RotateCW, k.RotateCC, k.Hold},
		{k.Pause, k.Mute, k.Home, k.Quit},
	}
}

// Action translates a key message to a movement intent.
// Returns engine.ActionNone for keys that are not movement keys.
func (k KeyMap) Action(msg tea.KeyMsg) engine.Action {
	switch {
	case key.Matches(msg, k.Left):
		return engine.ActionMoveLeft
	case key.Matches(msg, k.Right):
		return engine.ActionMoveRight
	case key.Matches(msg, k.Down):
		return engine.ActionMoveDown
	case key.Matches(msg, k.HardDrop):
		return engine.ActionHardDrop
	case key.Matches(msg, k.RotateCW):
		return engine.ActionFlipClockwise
	case key.Matches(msg, k.RotateCC):
		return engine.ActionFlipCounterclockwise
	case key.Matches(msg, k.Hold):
		return engine.ActionHold
	}
	return engine.ActionNone
}
