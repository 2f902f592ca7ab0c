package mastery

import "fmt"

// InvalidStateError reports a user skill state that violates a mastery
// rule: a level outside 0-100, a practice timestamp in the future, or
// reinforcement of a locked skill. Recoverable cases are clamped and the
// error is surfaced as a warning.
type InvalidStateError struct {
	SkillID string
	Reason  string
}

func (e *InvalidStateError) Error() string {
	if e.SkillID == "" {
		return "invalid mastery state: " + e.Reason
	}
	return fmt.Sprintf("invalid mastery state for %q: %s", e.SkillID, e.Reason)
}
