package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the demo TUI.
type KeyMap struct {
	// Requests
	Toast     key.Binding
	FailToast key.Binding
	Loading   key.Binding
	Hide      key.Binding
	Alert     key.Binding
	Sheet     key.Binding
	Left      key.Binding
	Right     key.Binding

	// Overlay control
	Back       key.Binding
	DismissAll key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toast, k.Loading, k.Alert, k.Sheet, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toast, k.FailToast, k.Loading, k.Hide},
		{k.Alert, k.Sheet, k.Left, k.Right},
		{k.Back, k.DismissAll, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toast: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toast"),
		),
		FailToast: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "failure toast"),
		),
		Loading: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "loading"),
		),
		Hide: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hide loading"),
		),
		Alert: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "alert"),
		),
		Sheet: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "bottom sheet"),
		),
		Left: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "left drawer"),
		),
		Right: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "right drawer"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "tap background"),
		),
		DismissAll: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss all"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
