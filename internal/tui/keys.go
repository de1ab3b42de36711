package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap collects every binding the dashboard reacts to. Digit keys sort
// the visible table and are documented as one pseudo-binding.
type keyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Analyze   key.Binding
	Results   key.Binding
	Filters   key.Binding
	Reset     key.Binding
	Sort      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Analyze: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "analyze"),
		),
		Results: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "results"),
		),
		Filters: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "filters"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Sort: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-0", "sort column"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Analyze, k.Results, k.Sort, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Analyze},
		{k.Results, k.Filters, k.Sort},
		{k.Reset, k.Quit},
	}
}
