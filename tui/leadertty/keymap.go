package leadertty

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the bindings the terminal key source reacts to. Every other
// printable key is fed to the machine while leader mode is active.
type KeyMap struct {
	Leader key.Binding
	End    key.Binding
	Quit   key.Binding
}

// NewKeyMap builds bindings from the configured key names, using bubbletea
// key notation ("ctrl+space", "esc", "ctrl+g").
func NewKeyMap(leaderKey, endKey string) KeyMap {
	if strings.TrimSpace(leaderKey) == "" {
		leaderKey = "ctrl+space"
	}
	if strings.TrimSpace(endKey) == "" {
		endKey = "esc"
	}

	return KeyMap{
		Leader: key.NewBinding(
			key.WithKeys(aliases(leaderKey)...),
			key.WithHelp(leaderKey, "leader"),
		),
		End: key.NewBinding(
			key.WithKeys(aliases(endKey)...),
			key.WithHelp(endKey, "end"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// aliases adds the names terminals actually report for a key. Ctrl+Space
// arrives as NUL, which bubbletea names ctrl+@.
func aliases(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	keys := []string{name}
	switch name {
	case "ctrl+space", "ctrl+ ":
		keys = append(keys, "ctrl+@")
	case "esc", "escape":
		keys = []string{"esc"}
	}
	return keys
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Leader, k.End, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
