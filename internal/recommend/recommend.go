// Package recommend ranks the skills a learner should work on next.
package recommend

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/skillgraph"
)

// Kind names the tier a recommendation was drawn from.
type Kind string

const (
	// KindNext is an unlocked skill the learner has not mastered yet.
	KindNext Kind = "next"
	// KindReview is a skill that was mastered and has decayed.
	KindReview Kind = "review"
	// KindAlmost is a locked skill with most prerequisites in place.
	KindAlmost Kind = "almost"
	// KindPolish is a mastered skill with room left below 100.
	KindPolish Kind = "polish"
)

// Recommendation is one ranked suggestion.
type Recommendation struct {
	SkillID          string              `json:"skill_id"`
	Name             string              `json:"skill_name"`
	Category         skillgraph.Category `json:"category"`
	Difficulty       int                 `json:"difficulty"`
	EstimatedHours   float64             `json:"estimated_hours"`
	Score            int                 `json:"score"`
	Kind             Kind                `json:"kind"`
	Reason           string              `json:"reason"`
	PrerequisitesMet int                 `json:"prerequisites_met"`
}

// Options controls ranking and truncation.
type Options struct {
	// Limit caps the number of returned recommendations.
	Limit int
	// Persist is how many of the top recommendations the caller stores.
	Persist int
	// AlmostFraction is the minimum share of mastered prerequisites for a
	// locked skill to qualify as KindAlmost.
	AlmostFraction float64
	Weights        Weights
}

// DefaultOptions returns the standard ranking options.
func DefaultOptions() Options {
	return Options{
		Limit:          10,
		Persist:        5,
		AlmostFraction: 0.5,
		Weights:        DefaultWeights(),
	}
}

type candidate struct {
	skill     skillgraph.Skill
	kind      Kind
	satisfied int
	total     int
}

// Recommend ranks skills for a learner. States missing from the map are
// treated as never practiced, and any skill whose prerequisites are all
// mastered counts as unlocked whatever its stored row says. The result is deterministic for a
// given graph and state map and is never empty while the graph has a skill
// that is not at level 100.
func Recommend(g *skillgraph.Graph, states map[string]mastery.State, opts Options) []Recommendation {
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}

	mastered := MasteredSet(states)
	var next, review, almost, polish []candidate

	for _, s := range g.Skills() {
		st, ok := states[s.ID]
		if !ok {
			st = mastery.NewState(s.ID)
		}
		// Locked or missing rows are reachable as soon as their
		// prerequisites are mastered.
		st.Unlocked = st.Unlocked || g.IsUnlockable(s.ID, mastered)
		sat, total := g.PrerequisiteProgress(s.ID, mastered)
		c := candidate{skill: s, satisfied: sat, total: total}

		switch {
		case st.Unlocked && st.NeedsReview():
			c.kind = KindReview
			review = append(review, c)
		case st.Unlocked && !st.IsMastered():
			c.kind = KindNext
			next = append(next, c)
		case st.Unlocked && st.Level < mastery.MaxLevel:
			c.kind = KindPolish
			polish = append(polish, c)
		case !st.Unlocked && total > 0 && float64(sat)/float64(total) >= opts.AlmostFraction:
			c.kind = KindAlmost
			almost = append(almost, c)
		}
	}

	var pool []candidate
	switch {
	case len(next)+len(review) > 0:
		pool = append(next, review...)
	case len(almost) > 0:
		pool = almost
	default:
		pool = polish
	}

	recs := lo.Map(pool, func(c candidate, _ int) Recommendation {
		return Recommendation{
			SkillID:          c.skill.ID,
			Name:             c.skill.Name,
			Category:         c.skill.Category,
			Difficulty:       c.skill.Difficulty,
			EstimatedHours:   c.skill.EstimatedHours,
			Score:            scoreCandidate(c, len(mastered), opts.Weights),
			Kind:             c.kind,
			Reason:           reason(c),
			PrerequisitesMet: c.satisfied,
		}
	})

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Difficulty != b.Difficulty {
			return a.Difficulty < b.Difficulty
		}
		return a.SkillID < b.SkillID
	})

	if len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	return recs
}

// MasteredSet returns the IDs of skills whose current level meets the
// mastery threshold.
func MasteredSet(states map[string]mastery.State) map[string]bool {
	out := make(map[string]bool)
	for id, st := range states {
		if st.IsMastered() {
			out[id] = true
		}
	}
	return out
}

func scoreCandidate(c candidate, masteredCount int, w Weights) int {
	score := Score(c.skill, c.satisfied, masteredCount, w)
	switch c.kind {
	case KindReview:
		score += w.ReviewBonus
	case KindAlmost:
		if c.total > 0 {
			score = score * c.satisfied / c.total
		}
	}
	return clampScore(score)
}

func reason(c candidate) string {
	switch c.kind {
	case KindReview:
		return "Review: mastery has decayed below the threshold"
	case KindAlmost:
		return fmt.Sprintf("Almost ready: %d of %d prerequisites met", c.satisfied, c.total)
	case KindPolish:
		return "Polish: push a mastered skill toward 100"
	default:
		return fmt.Sprintf("Ready to learn: %d prerequisites met", c.satisfied)
	}
}
