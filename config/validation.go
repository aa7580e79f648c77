package config

import (
	"fmt"
	"strings"

	"github.com/grovetools/leader/errors"
)

// Validate checks semantic rules the schema cannot express. Empty keys and
// duplicate sequences are not errors here; the table builder reports them.
func (c *Config) Validate() error {
	var problems []string

	if c.Leader.Timeout < 0 {
		problems = append(problems, "leader.timeout must not be negative")
	}
	if c.Leader.SettleDelay < 0 {
		problems = append(problems, "leader.settle_delay must not be negative")
	}
	if c.Leader.CommandTimeout < 0 {
		problems = append(problems, "leader.command_timeout must not be negative")
	}
	if c.Leader.Timeout > 0 && c.Leader.SettleDelay >= c.Leader.Timeout {
		problems = append(problems, fmt.Sprintf("leader.settle_delay (%s) must be shorter than leader.timeout (%s)", c.Leader.SettleDelay, c.Leader.Timeout))
	}
	if c.Leader.Shell != "" && !strings.HasPrefix(c.Leader.Shell, "/") {
		problems = append(problems, fmt.Sprintf("leader.shell must be an absolute path, got %q", c.Leader.Shell))
	}

	validateNodes(c.Actions, "actions", &problems)

	if len(problems) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeConfigValidation,
		fmt.Sprintf("invalid configuration:\n- %s", strings.Join(problems, "\n- "))).
		WithDetail("problems", problems)
}

// validateNodes walks the tree with an explicit stack.
func validateNodes(roots []Node, path string, problems *[]string) {
	type frame struct {
		node Node
		path string
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], fmt.Sprintf("%s[%d]", path, i)})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, p := f.node, f.path

		switch n.EffectiveType() {
		case NodeGroup:
			if n.Value != "" {
				*problems = append(*problems, fmt.Sprintf("%s: group %q must not have a value", p, n.Key))
			}
			for i := len(n.Actions) - 1; i >= 0; i-- {
				stack = append(stack, frame{n.Actions[i], fmt.Sprintf("%s.actions[%d]", p, i)})
			}
		case NodeApplication, NodeURL, NodeCommand, NodeFolder:
			if strings.TrimSpace(n.Value) == "" {
				*problems = append(*problems, fmt.Sprintf("%s: %s action %q needs a value", p, n.Type, n.Key))
			}
			if len(n.Actions) > 0 {
				*problems = append(*problems, fmt.Sprintf("%s: %s action %q cannot have child actions", p, n.Type, n.Key))
			}
		case "":
			*problems = append(*problems, fmt.Sprintf("%s: node %q needs a type or child actions", p, n.Key))
		default:
			*problems = append(*problems, fmt.Sprintf("%s: unknown type %q", p, n.Type))
		}
	}
}
