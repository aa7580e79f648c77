// Package sequence flattens an action tree into a table keyed by leader
// sequences and classifies typed buffers against it.
package sequence

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/pkg/action"
)

// Table maps lowercase key sequences to action descriptors.
// A Table is never modified after Build returns it, so it can be shared
// between goroutines without locking.
type Table struct {
	entries map[string]action.Descriptor
	// prefixes holds every strict prefix of every sequence in entries.
	prefixes map[string]struct{}
}

// Entry is one row of a table.
type Entry struct {
	Sequence string            `json:"sequence"`
	Action   action.Descriptor `json:"action"`
}

// Diagnostic is a non-fatal configuration defect found while building.
type Diagnostic struct {
	Err      *errors.LeaderError
	Sequence string
}

func (d Diagnostic) String() string { return d.Err.Message }

// NewTable builds a table directly from sequence/descriptor pairs.
// Sequences are used as given.
func NewTable(entries map[string]action.Descriptor) *Table {
	t := &Table{
		entries:  make(map[string]action.Descriptor, len(entries)),
		prefixes: make(map[string]struct{}),
	}
	for seq, d := range entries {
		t.insert(seq, d)
	}
	return t
}

// Empty returns a table with no entries.
func Empty() *Table {
	return NewTable(nil)
}

func (t *Table) insert(seq string, d action.Descriptor) {
	t.entries[seq] = d
	for i := range seq {
		if i > 0 {
			t.prefixes[seq[:i]] = struct{}{}
		}
	}
}

type frame struct {
	node   action.Node
	prefix string
}

// Build flattens roots into a Table.
//
// The traversal is depth-first pre-order in slice order and uses an explicit
// stack, so configuration depth never grows the call stack. Nodes with an
// empty key are skipped along with their subtree. When two items resolve to
// the same sequence the one visited later wins; both cases are reported as
// diagnostics.
func Build(roots []action.Node) (*Table, []Diagnostic) {
	t := &Table{
		entries:  make(map[string]action.Descriptor),
		prefixes: make(map[string]struct{}),
	}
	var diags []Diagnostic

	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: roots[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := f.node.(type) {
		case *action.Group:
			k, ok := firstKey(n.Key)
			if !ok {
				diags = append(diags, Diagnostic{Err: errors.EmptyKey("group", f.prefix), Sequence: f.prefix})
				continue
			}
			prefix := f.prefix + k
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: n.Children[i], prefix: prefix})
			}
		case *action.Item:
			k, ok := firstKey(n.Key)
			if !ok {
				diags = append(diags, Diagnostic{Err: errors.EmptyKey("action", f.prefix), Sequence: f.prefix})
				continue
			}
			seq := f.prefix + k
			if _, exists := t.entries[seq]; exists {
				diags = append(diags, Diagnostic{Err: errors.DuplicateSequence(seq), Sequence: seq})
			}
			t.insert(seq, n.Action)
		}
	}

	return t, diags
}

// firstKey returns the lowercased first character of key.
func firstKey(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return string(unicode.ToLower(r)), true
}

// Lookup returns the descriptor bound to seq.
func (t *Table) Lookup(seq string) (action.Descriptor, bool) {
	d, ok := t.entries[seq]
	return d, ok
}

// Len returns the number of sequences in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns all rows sorted by sequence.
func (t *Table) Entries() []Entry {
	return t.Candidates("")
}

// Candidates returns the rows whose sequence starts with prefix, sorted by
// sequence.
func (t *Table) Candidates(prefix string) []Entry {
	var out []Entry
	for seq, d := range t.entries {
		if strings.HasPrefix(seq, prefix) {
			out = append(out, Entry{Sequence: seq, Action: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}
