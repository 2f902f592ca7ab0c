package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// LearnerSignals holds externally measured readiness inputs.
type LearnerSignals struct {
	ent.Schema
}

func (LearnerSignals) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty().Unique(),
		field.Int("goal_progress").Optional().Nillable().Range(0, 100),
		field.Int("interview_score").Optional().Nillable().Range(0, 100),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
