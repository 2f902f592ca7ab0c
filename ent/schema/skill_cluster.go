package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// SkillCluster groups skills into a career path.
type SkillCluster struct {
	ent.Schema
}

func (SkillCluster) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").NotEmpty().Immutable(),
		field.String("name").NotEmpty(),
		field.String("career_path").Default(""),
		field.String("description").Default(""),
	}
}

// ClusterSkill assigns a skill to a cluster. A skill belongs to at most
// one cluster.
type ClusterSkill struct {
	ent.Schema
}

func (ClusterSkill) Fields() []ent.Field {
	return []ent.Field{
		field.String("cluster_id").NotEmpty(),
		field.String("skill_id").NotEmpty().Unique(),
	}
}
