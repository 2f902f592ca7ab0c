package mastery

import (
	"math"
	"time"
)

// BaseStep is the level gained from one practice without a performance
// signal.
const BaseStep = 10

// ReinforcementStep returns the level gain for one practice. With a
// performance signal p in [0, 1] the base step is scaled by (0.5 + p).
func ReinforcementStep(performance *float64) int {
	if performance == nil || math.IsNaN(*performance) {
		return BaseStep
	}
	p := math.Max(0, math.Min(1, *performance))
	step := int(math.Round(BaseStep * (0.5 + p)))
	return max(1, min(MaxLevel, step))
}

// Reinforce records a practice at the given time. The new baseline is the
// current (decayed) level plus the step, capped at MaxLevel. Practicing a
// locked skill is an *InvalidStateError.
func Reinforce(s State, at time.Time, performance *float64) (State, error) {
	if !s.Unlocked {
		return s, &InvalidStateError{SkillID: s.SkillID, Reason: "skill is locked"}
	}

	s.Baseline = Clamp(s.Level + ReinforcementStep(performance))
	s.Level = s.Baseline
	s.LastPracticed = &at
	s.ReinforcementCount++
	if s.MasteredAt == nil && s.IsMastered() {
		s.MasteredAt = &at
	}
	return s, nil
}
