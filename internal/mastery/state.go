package mastery

import (
	"fmt"
	"time"
)

// Status is the derived display state of a skill for one learner.
type Status string

const (
	StatusLocked      Status = "locked"
	StatusAvailable   Status = "available"
	StatusLearning    Status = "learning"
	StatusMastered    Status = "mastered"
	StatusNeedsReview Status = "needs_review"
)

// State is one learner's progress on one skill.
type State struct {
	SkillID string

	// Level is the current, decayed level.
	Level int

	// Baseline is the level recorded at the last practice. Decay is always
	// recomputed from it so that applying decay twice is harmless.
	Baseline int

	Unlocked   bool
	UnlockedAt *time.Time

	// LastPracticed is nil for skills that were never practiced; decay
	// does not apply to them.
	LastPracticed *time.Time

	// MasteredAt is set the first time Level reaches Threshold and is
	// never cleared.
	MasteredAt *time.Time

	ReinforcementCount int
}

// NewState returns a locked, level-0 state for a skill.
func NewState(skillID string) State {
	return State{SkillID: skillID}
}

// IsMastered reports whether the current level meets the threshold.
func (s State) IsMastered() bool {
	return IsMastered(s.Level)
}

// NeedsReview reports whether the skill was mastered once and has since
// decayed below the threshold.
func (s State) NeedsReview() bool {
	return s.MasteredAt != nil && !s.IsMastered()
}

// Status derives the display status.
func (s State) Status() Status {
	switch {
	case !s.Unlocked:
		return StatusLocked
	case s.IsMastered():
		return StatusMastered
	case s.NeedsReview():
		return StatusNeedsReview
	case s.Level > 0 || s.ReinforcementCount > 0:
		return StatusLearning
	default:
		return StatusAvailable
	}
}

// Unlock marks the state unlocked at the given time. Unlocking an already
// unlocked state keeps the original timestamp.
func Unlock(s State, at time.Time) State {
	if s.Unlocked {
		return s
	}
	s.Unlocked = true
	s.UnlockedAt = &at
	return s
}

// Sanitize clamps out-of-range levels. When anything had to change it
// returns the repaired state together with an *InvalidStateError.
func Sanitize(s State, now time.Time) (State, error) {
	var problems []string
	if c := Clamp(s.Level); c != s.Level {
		problems = append(problems, fmt.Sprintf("level %d out of range", s.Level))
		s.Level = c
	}
	if c := Clamp(s.Baseline); c != s.Baseline {
		problems = append(problems, fmt.Sprintf("baseline %d out of range", s.Baseline))
		s.Baseline = c
	}
	if s.ReinforcementCount < 0 {
		problems = append(problems, "negative reinforcement count")
		s.ReinforcementCount = 0
	}
	if s.MasteredAt == nil && s.IsMastered() {
		at := now
		if s.LastPracticed != nil {
			at = *s.LastPracticed
		}
		s.MasteredAt = &at
	}
	if len(problems) == 0 {
		return s, nil
	}
	return s, &InvalidStateError{SkillID: s.SkillID, Reason: fmt.Sprint(problems)}
}
