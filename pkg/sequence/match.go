package sequence

import "github.com/grovetools/leader/pkg/action"

// Result classifies a typed buffer against a table.
type Result int

const (
	// DeadEnd means no sequence equals or extends the buffer.
	DeadEnd Result = iota
	// ValidPrefix means the buffer is not a sequence but some sequence extends it.
	ValidPrefix
	// ExactUnambiguous means the buffer is a sequence and nothing extends it.
	ExactUnambiguous
	// ExactAmbiguous means the buffer is a sequence and is also a strict
	// prefix of another sequence.
	ExactAmbiguous
)

func (r Result) String() string {
	switch r {
	case DeadEnd:
		return "dead_end"
	case ValidPrefix:
		return "valid_prefix"
	case ExactUnambiguous:
		return "exact"
	case ExactAmbiguous:
		return "exact_ambiguous"
	}
	return "unknown"
}

// Exact reports whether the buffer matched a sequence.
func (r Result) Exact() bool {
	return r == ExactUnambiguous || r == ExactAmbiguous
}

// Match is the outcome of Classify. Action is set only for exact results.
type Match struct {
	Result Result
	Action action.Descriptor
}

// Classify determines how buffer relates to the sequences in t. It keeps no
// state between calls.
func Classify(t *Table, buffer string) Match {
	if t == nil {
		return Match{Result: DeadEnd}
	}
	if buffer == "" {
		if t.Len() > 0 {
			return Match{Result: ValidPrefix}
		}
		return Match{Result: DeadEnd}
	}

	_, extended := t.prefixes[buffer]
	if d, ok := t.entries[buffer]; ok {
		if extended {
			return Match{Result: ExactAmbiguous, Action: d}
		}
		return Match{Result: ExactUnambiguous, Action: d}
	}
	if extended {
		return Match{Result: ValidPrefix}
	}
	return Match{Result: DeadEnd}
}
