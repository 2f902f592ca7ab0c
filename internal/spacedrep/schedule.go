package spacedrep

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/skillforge/internal/mastery"
)

// cutoff is the decayed value below which a level rounds under the
// threshold.
const cutoff = mastery.Threshold - 0.5

// DueAt returns when a skill's level will decay below mastery.Threshold,
// given its per-day rate and the decay floor. ok is false when the skill
// was never practiced or will never fall below the threshold.
func DueAt(st mastery.State, rate, floor float64) (time.Time, bool) {
	if st.LastPracticed == nil || rate <= 0 || floor >= cutoff {
		return time.Time{}, false
	}
	baseline := float64(st.Baseline)
	if baseline < cutoff {
		return *st.LastPracticed, true
	}
	days := math.Log(baseline/cutoff) / rate
	return st.LastPracticed.Add(time.Duration(days * 24 * float64(time.Hour))), true
}

// Schedule builds the review for one state. ok is false for skills that
// were never mastered or never decay.
func Schedule(st mastery.State, rate, floor float64) (Review, bool) {
	if st.MasteredAt == nil {
		return Review{}, false
	}
	due, ok := DueAt(st, rate, floor)
	if !ok {
		return Review{}, false
	}
	return Review{
		SkillID:       st.SkillID,
		Level:         st.Level,
		LastPracticed: *st.LastPracticed,
		DueAt:         due,
	}, true
}

// Queue schedules every mastered skill and sorts the reviews by due date,
// most overdue first. Ties break on skill ID.
func Queue(states []mastery.State, rateFor func(skillID string) float64, floor float64) []Review {
	var out []Review
	for _, st := range states {
		if r, ok := Schedule(st, rateFor(st.SkillID), floor); ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].DueAt.Before(out[j].DueAt)
		}
		return out[i].SkillID < out[j].SkillID
	})
	return out
}

// Due filters reviews to those due at now.
func Due(reviews []Review, now time.Time) []Review {
	var out []Review
	for _, r := range reviews {
		if r.IsDue(now) {
			out = append(out, r)
		}
	}
	return out
}
