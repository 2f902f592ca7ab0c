package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LearningActivity is a completed activity that practiced one or more
// skills.
type LearningActivity struct {
	ent.Schema
}

func (LearningActivity) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty().Immutable(),
		field.String("user_id").NotEmpty(),
		field.String("title").Default(""),
		field.String("kind").Default("").Comment("lesson, project, quiz, ..."),
		field.JSON("skill_ids", []string{}),
		field.Float("performance").
			Optional().
			Nillable().
			Comment("0.0-1.0 when the activity was graded"),
		field.Time("completed_at"),
	}
}

func (LearningActivity) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "completed_at"),
	}
}
