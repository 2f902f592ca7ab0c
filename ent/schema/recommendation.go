package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Recommendation is a persisted suggestion. Only the latest recompute's
// top entries are active.
type Recommendation struct {
	ent.Schema
}

func (Recommendation) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("skill_id").NotEmpty(),
		field.Int("score").Range(0, 100),
		field.String("kind").Comment("next, review, almost or polish"),
		field.String("reason"),
		field.Bool("is_active"),
		field.Int("rank"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

func (Recommendation) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "skill_id").Unique(),
		index.Fields("user_id", "is_active"),
	}
}
