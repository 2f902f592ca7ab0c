package mastery

import (
	"math"
	"time"
)

// DefaultDecayRate is the per-day forgetting rate used when a skill does
// not declare its own.
const DefaultDecayRate = 0.05

// Decay returns level * e^(-days*rate), clamped to [min(floor, level), level].
// Negative days are treated as zero and a non-positive rate disables decay.
func Decay(level, days, rate, floor float64) float64 {
	if days <= 0 || rate <= 0 {
		return level
	}
	retained := level * math.Exp(-days*rate)
	lo := math.Min(floor, level)
	return math.Max(lo, math.Min(level, retained))
}

// ElapsedDays returns the fractional number of days from since to now.
// The result is negative when since is after now.
func ElapsedDays(since, now time.Time) float64 {
	return now.Sub(since).Hours() / 24
}

// ApplyDecay recomputes Level from Baseline and LastPracticed as of now.
// States that were never practiced are returned unchanged. A practice
// timestamp in the future is treated as zero elapsed days and reported
// with an *InvalidStateError alongside the usable result.
func ApplyDecay(s State, now time.Time, rate, floor float64) (State, error) {
	if s.LastPracticed == nil {
		return s, nil
	}

	var warn error
	days := ElapsedDays(*s.LastPracticed, now)
	if days < 0 {
		warn = &InvalidStateError{SkillID: s.SkillID, Reason: "last practiced is in the future"}
		days = 0
	}

	decayed := Decay(float64(s.Baseline), days, rate, floor)
	s.Level = Clamp(int(math.Round(decayed)))
	return s, warn
}
