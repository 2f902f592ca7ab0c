package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SkillEvent is one entry of the skill audit log. Sequence numbers come
// from the store's global counter and order events across learners.
type SkillEvent struct {
	ent.Schema
}

func (SkillEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Unique().
			Immutable(),
		field.Time("timestamp").
			Default(time.Now).
			Immutable().
			Comment("UTC time the change took effect"),
		field.String("user_id").NotEmpty(),
		field.String("skill_id").NotEmpty(),
		field.String("kind").
			NotEmpty().
			Comment("seeded, unlocked, decayed, reinforced or mastered"),
		field.Int("from_level"),
		field.Int("to_level"),
	}
}

func (SkillEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "sequence"),
	}
}
