package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Tabs
	NextTab  key.Binding
	PrevTab  key.Binding
	CloseTab key.Binding

	// Translation
	ToggleOriginal key.Binding
	CycleLanguage  key.Binding
	CycleBackend   key.Binding
	ToggleWarnings key.Binding
	ManualInput    key.Binding

	// Overlay
	ToggleOverlay key.Binding
	MoreLines     key.Binding
	FewerLines    key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Close tab"),
		),

		ToggleOriginal: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Show/hide original"),
		),
		CycleLanguage: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Cycle language"),
		),
		CycleBackend: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "Cycle backend"),
		),
		ToggleWarnings: key.NewBinding(
			key.WithKeys("W"),
			key.WithHelp("W", "Driver warnings on/off"),
		),
		ManualInput: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Translate text"),
		),

		ToggleOverlay: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Toggle overlay"),
		),
		MoreLines: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "More overlay lines"),
		),
		FewerLines: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Fewer overlay lines"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Follow latest"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Translate"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.CloseTab},
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.ToggleOriginal, k.CycleLanguage, k.CycleBackend, k.ToggleWarnings, k.ManualInput},
		{k.ToggleOverlay, k.MoreLines, k.FewerLines},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
