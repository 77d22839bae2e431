package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	next    key.Binding
	search  key.Binding
	toggle  key.Binding
	remove  key.Binding
	clear   key.Binding
	save    key.Binding
	refresh key.Binding
	detach  key.Binding
	edit    key.Binding
	delete  key.Binding
	yes     key.Binding
	no      key.Binding
	quit    key.Binding
	force   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle cart")),
		remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save as playlist")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		detach:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove track")),
		edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		delete:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		force:   key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.toggle, k.remove, k.clear, k.save},
		{k.refresh, k.detach, k.edit, k.delete},
		{k.yes, k.no, k.next, k.quit},
	}
}

// forView returns the bindings shown in the help line of v.
func (k keyMap) forView(v ViewState) []key.Binding {
	switch v {
	case SearchView:
		return []key.Binding{k.enter, k.next, k.back}
	case ResultsView:
		return []key.Binding{k.toggle, k.search, k.next, k.quit}
	case CartView:
		return []key.Binding{k.remove, k.clear, k.save, k.next, k.quit}
	case TitlePromptView, EditView:
		return []key.Binding{k.enter, k.back}
	case PlaylistsView:
		return []key.Binding{k.enter, k.refresh, k.next, k.quit}
	case DetailView:
		return []key.Binding{k.detach, k.edit, k.delete, k.back, k.quit}
	case ConfirmDeleteView:
		return []key.Binding{k.yes, k.no}
	default:
		return k.ShortHelp()
	}
}
