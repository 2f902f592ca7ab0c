// Package readiness folds a learner's mastery, coverage, study consistency
// and external signals into a single placement-readiness score.
package readiness

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/skillgraph"
)

// Neutral is the value used for signals that have not been measured.
const Neutral = 50

// ConsistencyWindow is how many of the most recent completions feed the
// consistency score.
const ConsistencyWindow = 10

// Weights are the blend factors of the readiness score. They must sum to 1.
type Weights struct {
	Mastery     float64 `json:"mastery"`
	Coverage    float64 `json:"coverage"`
	Consistency float64 `json:"consistency"`
	Goal        float64 `json:"goal"`
	Interview   float64 `json:"interview"`
}

// DefaultWeights returns the standard 35/25/20/10/10 blend.
func DefaultWeights() Weights {
	return Weights{Mastery: 0.35, Coverage: 0.25, Consistency: 0.20, Goal: 0.10, Interview: 0.10}
}

// Validate checks that every weight is non-negative and that they sum to 1.
func (w Weights) Validate() error {
	parts := []float64{w.Mastery, w.Coverage, w.Consistency, w.Goal, w.Interview}
	if lo.SomeBy(parts, func(p float64) bool { return p < 0 }) {
		return fmt.Errorf("readiness weights must not be negative: %+v", w)
	}
	if sum := lo.Sum(parts); math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("readiness weights must sum to 1, got %g", sum)
	}
	return nil
}

// Signals are externally measured inputs. Nil means not measured yet.
type Signals struct {
	GoalProgress   *int `json:"goal_progress"`
	InterviewScore *int `json:"interview_score"`
}

// Score is the readiness breakdown for one learner.
type Score struct {
	PlacementReadiness int                         `json:"placement_readiness"`
	SkillsMastered     int                         `json:"skills_mastered"`
	SkillsTracked      int                         `json:"skills_tracked"`
	AverageMastery     float64                     `json:"average_mastery"`
	Coverage           float64                     `json:"coverage"`
	ConsistencyScore   int                         `json:"consistency_score"`
	GoalProgress       int                         `json:"goal_progress"`
	InterviewScore     int                         `json:"interview_score"`
	Categories         map[skillgraph.Category]int `json:"categories,omitempty"`
	ComputedAt         time.Time                   `json:"computed_at"`
}

// Compute blends the tracked skill states, recent activity completion
// times, and signals into a Score. With no tracked skills the readiness is
// 0. Weights are assumed valid.
func Compute(states []mastery.State, completions []time.Time, sig Signals, w Weights) Score {
	out := Score{
		ConsistencyScore: Consistency(completions),
		GoalProgress:     signalValue(sig.GoalProgress),
		InterviewScore:   signalValue(sig.InterviewScore),
		SkillsTracked:    len(states),
	}
	if len(states) == 0 {
		return out
	}

	out.SkillsMastered = lo.CountBy(states, func(s mastery.State) bool { return s.IsMastered() })
	out.AverageMastery = float64(lo.SumBy(states, func(s mastery.State) int { return mastery.Clamp(s.Level) })) / float64(len(states))
	out.Coverage = float64(out.SkillsMastered) / float64(len(states)) * 100

	blended := out.AverageMastery*w.Mastery +
		out.Coverage*w.Coverage +
		float64(out.ConsistencyScore)*w.Consistency +
		float64(out.GoalProgress)*w.Goal +
		float64(out.InterviewScore)*w.Interview
	out.PlacementReadiness = mastery.Clamp(int(math.Round(blended)))
	return out
}

// Consistency scores how regularly the learner studies. The most recent
// ConsistencyWindow completions are taken newest first; with fewer than
// two the score is Neutral, otherwise 100 minus 5 per day of average gap,
// floored at 0.
func Consistency(completions []time.Time) int {
	if len(completions) < 2 {
		return Neutral
	}
	recent := append([]time.Time(nil), completions...)
	sort.Slice(recent, func(i, j int) bool { return recent[i].After(recent[j]) })
	if len(recent) > ConsistencyWindow {
		recent = recent[:ConsistencyWindow]
	}

	span := recent[0].Sub(recent[len(recent)-1])
	avgGapDays := span.Hours() / 24 / float64(len(recent)-1)
	return mastery.Clamp(int(math.Round(100 - 5*avgGapDays)))
}

// CategoryVector returns the average level per category across every
// catalog skill, counting skills without state as 0.
func CategoryVector(skills []skillgraph.Skill, states map[string]mastery.State) map[skillgraph.Category]int {
	groups := lo.GroupBy(skills, func(s skillgraph.Skill) skillgraph.Category { return s.Category })
	out := make(map[skillgraph.Category]int, len(groups))
	for cat, members := range groups {
		total := lo.SumBy(members, func(s skillgraph.Skill) int { return mastery.Clamp(states[s.ID].Level) })
		out[cat] = int(math.Round(float64(total) / float64(len(members))))
	}
	return out
}

func signalValue(v *int) int {
	if v == nil {
		return Neutral
	}
	return mastery.Clamp(*v)
}
