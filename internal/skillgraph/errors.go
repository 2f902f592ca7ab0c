package skillgraph

import (
	"fmt"
	"strings"
)

// IntegrityError reports a structurally invalid catalog: duplicate ids,
// edges or cluster members that reference unknown skills, or a
// prerequisite cycle. Nothing may be unlocked or recommended from a
// catalog that produced one.
type IntegrityError struct {
	Problems []string

	// CycleSkills lists the skills that sit on or behind a prerequisite
	// cycle. Empty when the graph is acyclic.
	CycleSkills []string
}

func (e *IntegrityError) Error() string {
	if len(e.Problems) == 1 {
		return "skill graph integrity: " + e.Problems[0]
	}
	return fmt.Sprintf("skill graph integrity (%d problems):\n  %s",
		len(e.Problems), strings.Join(e.Problems, "\n  "))
}

func (e *IntegrityError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *IntegrityError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
