package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Skill is a node of the prerequisite graph.
type Skill struct {
	ent.Schema
}

func (Skill) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable(),
		field.String("name").
			NotEmpty(),
		field.String("description").
			Default(""),
		field.String("category").
			NotEmpty().
			Comment("Programming, Frontend, Backend, ... (open set)"),
		field.Int("difficulty").
			Range(1, 10),
		field.Float("estimated_hours").
			Positive(),
		field.Float("decay_rate").
			Default(0).
			Comment("Per-day forgetting rate; 0 means the configured default"),
		field.Int("position").
			Comment("Order of the skill in the imported catalog"),
	}
}
