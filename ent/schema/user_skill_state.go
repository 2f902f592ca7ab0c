package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// UserSkillState is one learner's progress on one skill.
type UserSkillState struct {
	ent.Schema
}

func (UserSkillState) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("skill_id").NotEmpty(),
		field.Int("level").
			Range(0, 100).
			Comment("Current, decayed level"),
		field.Int("baseline").
			Range(0, 100).
			Comment("Level at last practice; decay anchor"),
		field.Bool("is_unlocked"),
		field.Time("unlocked_at").Optional().Nillable(),
		field.Time("last_practiced").Optional().Nillable(),
		field.Time("mastered_at").
			Optional().
			Nillable().
			Comment("First time the level reached the mastery threshold"),
		field.Int("reinforcement_count").Default(0),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

func (UserSkillState) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "skill_id").Unique(),
	}
}
