package recommend

import "github.com/abhisek/skillforge/internal/skillgraph"

// Weights are the additive terms of the recommendation score.
type Weights struct {
	Base              int
	DifficultyPenalty int // per difficulty point
	PrerequisiteBonus int // per mastered prerequisite

	// Learners with more than ExperiencedAfter mastered skills get
	// ExperiencedBonus per difficulty point back, favouring harder skills.
	ExperiencedAfter int
	ExperiencedBonus int

	CategoryBonus map[skillgraph.Category]int
	ReviewBonus   int
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Base:              100,
		DifficultyPenalty: 10,
		PrerequisiteBonus: 5,
		ExperiencedAfter:  10,
		ExperiencedBonus:  5,
		CategoryBonus: map[skillgraph.Category]int{
			skillgraph.CategoryProgramming: 10,
			skillgraph.CategoryFrontend:    5,
			skillgraph.CategoryBackend:     5,
		},
		ReviewBonus: 5,
	}
}

// Score computes the base score of a skill, clamped to [0, 100].
func Score(s skillgraph.Skill, satisfiedPrereqs, masteredCount int, w Weights) int {
	score := w.Base - s.Difficulty*w.DifficultyPenalty + satisfiedPrereqs*w.PrerequisiteBonus
	if masteredCount > w.ExperiencedAfter {
		score += s.Difficulty * w.ExperiencedBonus
	}
	score += w.CategoryBonus[s.Category]
	return clampScore(score)
}

func clampScore(s int) int {
	return max(0, min(100, s))
}
