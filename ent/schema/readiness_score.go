package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ReadinessScore is a learner's latest placement-readiness breakdown, one
// row per learner, overwritten by every recompute.
type ReadinessScore struct {
	ent.Schema
}

func (ReadinessScore) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.Int("placement_readiness").Range(0, 100),
		field.Int("skills_mastered"),
		field.Int("skills_tracked"),
		field.Float("average_mastery"),
		field.Float("coverage"),
		field.Int("consistency_score").Range(0, 100),
		field.Int("goal_progress"),
		field.Int("interview_score"),
		field.JSON("categories", map[string]int{}).Optional(),
		field.Time("computed_at").Default(time.Now),
	}
}

func (ReadinessScore) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id").Unique(),
	}
}
