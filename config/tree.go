package config

import "github.com/grovetools/leader/pkg/action"

// Tree converts the configured actions into the tree the sequence table is
// built from. Nodes of unknown type are dropped; Validate reports them.
// The walk uses an explicit stack so nesting depth is not bounded by the
// goroutine stack.
func (c *Config) Tree() []action.Node {
	type frame struct {
		src []Node
		dst *[]action.Node
	}

	roots := make([]action.Node, 0, len(c.Actions))
	stack := []frame{{src: c.Actions, dst: &roots}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range f.src {
			t := n.EffectiveType()
			if t == NodeGroup {
				g := &action.Group{Key: n.Key, Label: n.Label, Children: make([]action.Node, 0, len(n.Actions))}
				*f.dst = append(*f.dst, g)
				stack = append(stack, frame{src: n.Actions, dst: &g.Children})
				continue
			}
			kind := action.Kind(t)
			if !kind.Valid() {
				continue
			}
			*f.dst = append(*f.dst, &action.Item{Key: n.Key, Action: action.Descriptor{Kind: kind, Value: n.Value, Label: n.Label}})
		}
	}
	return roots
}
