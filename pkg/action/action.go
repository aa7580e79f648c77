// Package action defines the action descriptors bound to leader sequences
// and the group/item tree they are configured in.
package action

import "fmt"

// Kind identifies which executor handles a descriptor.
type Kind string

const (
	KindApplication Kind = "application"
	KindURL         Kind = "url"
	KindCommand     Kind = "command"
	KindFolder      Kind = "folder"
)

// Kinds lists every executable kind in display order.
var Kinds = []Kind{KindApplication, KindURL, KindCommand, KindFolder}

// Valid reports whether k is one of the executable kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindApplication, KindURL, KindCommand, KindFolder:
		return true
	}
	return false
}

// Descriptor is an immutable description of what to run when a sequence
// resolves. It is passed by value.
type Descriptor struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Title returns the label if set, otherwise the value.
func (d Descriptor) Title() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Value
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%s)", d.Kind, d.Title())
}

// Node is either a *Group or an *Item.
type Node interface {
	NodeKey() string
	isNode()
}

// Group extends the prefix of its children by the first character of Key.
type Group struct {
	Key      string
	Label    string
	Children []Node
}

// Item binds the first character of Key, under its ancestors' prefix, to an action.
type Item struct {
	Key    string
	Action Descriptor
}

func (g *Group) NodeKey() string { return g.Key }
func (i *Item) NodeKey() string  { return i.Key }

func (*Group) isNode() {}
func (*Item) isNode()  {}
