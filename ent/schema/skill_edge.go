package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SkillEdge declares that skill_id requires prerequisite_id.
type SkillEdge struct {
	ent.Schema
}

func (SkillEdge) Fields() []ent.Field {
	return []ent.Field{
		field.String("skill_id").NotEmpty(),
		field.String("prerequisite_id").NotEmpty(),
		field.Float("weight").
			Default(1).
			Comment("Presentation only"),
	}
}

func (SkillEdge) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("skill_id", "prerequisite_id").Unique(),
		index.Fields("prerequisite_id"),
	}
}
