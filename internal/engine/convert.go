package engine

import (
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/readiness"
	"github.com/abhisek/skillforge/internal/recommend"
	"github.com/abhisek/skillforge/internal/skillgraph"
	"github.com/abhisek/skillforge/internal/store"
)

func stateFromRecord(r store.SkillStateRecord) mastery.State {
	return mastery.State{
		SkillID:            r.SkillID,
		Level:              r.Level,
		Baseline:           r.Baseline,
		Unlocked:           r.Unlocked,
		UnlockedAt:         r.UnlockedAt,
		LastPracticed:      r.LastPracticed,
		MasteredAt:         r.MasteredAt,
		ReinforcementCount: r.ReinforcementCount,
	}
}

func stateToRecord(s mastery.State) store.SkillStateRecord {
	return store.SkillStateRecord{
		SkillID:            s.SkillID,
		Level:              s.Level,
		Baseline:           s.Baseline,
		Unlocked:           s.Unlocked,
		UnlockedAt:         s.UnlockedAt,
		LastPracticed:      s.LastPracticed,
		MasteredAt:         s.MasteredAt,
		ReinforcementCount: s.ReinforcementCount,
	}
}

func statesByID(records []store.SkillStateRecord) map[string]mastery.State {
	out := make(map[string]mastery.State, len(records))
	for _, r := range records {
		out[r.SkillID] = stateFromRecord(r)
	}
	return out
}

// sameState compares two states by value, including the pointed-to times.
func sameState(a, b mastery.State) bool {
	return a.SkillID == b.SkillID &&
		a.Level == b.Level &&
		a.Baseline == b.Baseline &&
		a.Unlocked == b.Unlocked &&
		a.ReinforcementCount == b.ReinforcementCount &&
		sameTime(a.UnlockedAt, b.UnlockedAt) &&
		sameTime(a.LastPracticed, b.LastPracticed) &&
		sameTime(a.MasteredAt, b.MasteredAt)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func recommendationRecords(recs []recommend.Recommendation, at time.Time) []store.RecommendationRecord {
	return lo.Map(recs, func(r recommend.Recommendation, i int) store.RecommendationRecord {
		return store.RecommendationRecord{
			SkillID:   r.SkillID,
			Score:     r.Score,
			Kind:      string(r.Kind),
			Reason:    r.Reason,
			Active:    true,
			Rank:      i + 1,
			UpdatedAt: at,
		}
	})
}

// recommendationFromRecord fills catalog fields from g. ok is false when the
// skill is no longer in the catalog.
func recommendationFromRecord(g *skillgraph.Graph, r store.RecommendationRecord) (recommend.Recommendation, bool) {
	s, ok := g.Skill(r.SkillID)
	if !ok {
		return recommend.Recommendation{}, false
	}
	return recommend.Recommendation{
		SkillID:        r.SkillID,
		Name:           s.Name,
		Category:       s.Category,
		Difficulty:     s.Difficulty,
		EstimatedHours: s.EstimatedHours,
		Score:          r.Score,
		Kind:           recommend.Kind(r.Kind),
		Reason:         r.Reason,
	}, true
}

func readinessRecord(s readiness.Score) *store.ReadinessRecord {
	return &store.ReadinessRecord{
		PlacementReadiness: s.PlacementReadiness,
		SkillsMastered:     s.SkillsMastered,
		SkillsTracked:      s.SkillsTracked,
		AverageMastery:     s.AverageMastery,
		Coverage:           s.Coverage,
		ConsistencyScore:   s.ConsistencyScore,
		GoalProgress:       s.GoalProgress,
		InterviewScore:     s.InterviewScore,
		Categories:         lo.MapKeys(s.Categories, func(_ int, c skillgraph.Category) string { return string(c) }),
		ComputedAt:         s.ComputedAt,
	}
}

func readinessFromRecord(r *store.ReadinessRecord) readiness.Score {
	return readiness.Score{
		PlacementReadiness: r.PlacementReadiness,
		SkillsMastered:     r.SkillsMastered,
		SkillsTracked:      r.SkillsTracked,
		AverageMastery:     r.AverageMastery,
		Coverage:           r.Coverage,
		ConsistencyScore:   r.ConsistencyScore,
		GoalProgress:       r.GoalProgress,
		InterviewScore:     r.InterviewScore,
		Categories:         lo.MapKeys(r.Categories, func(_ int, c string) skillgraph.Category { return skillgraph.Category(c) }),
		ComputedAt:         r.ComputedAt,
	}
}

func eventRecords(userID string, ts []mastery.Transition) []store.SkillEventRecord {
	return lo.Map(ts, func(t mastery.Transition, _ int) store.SkillEventRecord {
		return store.SkillEventRecord{
			Timestamp: t.At,
			UserID:    userID,
			SkillID:   t.SkillID,
			Kind:      string(t.Kind),
			FromLevel: t.FromLevel,
			ToLevel:   t.ToLevel,
		}
	})
}

func signalsFromRecord(r store.SignalsRecord) readiness.Signals {
	return readiness.Signals{GoalProgress: r.GoalProgress, InterviewScore: r.InterviewScore}
}
