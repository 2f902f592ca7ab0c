package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column layout. Each table mirrors an entity declared in
// ent/schema; store tests check the two stay in step.
var (
	LearnersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	LearnersTable = &schema.Table{
		Name:       "learners",
		Columns:    LearnersColumns,
		PrimaryKey: []*schema.Column{LearnersColumns[0]},
	}

	SkillsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "category", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeInt},
		{Name: "estimated_hours", Type: field.TypeFloat64},
		{Name: "decay_rate", Type: field.TypeFloat64, Default: 0},
		{Name: "position", Type: field.TypeInt},
	}
	SkillsTable = &schema.Table{
		Name:       "skills",
		Columns:    SkillsColumns,
		PrimaryKey: []*schema.Column{SkillsColumns[0]},
	}

	SkillEdgesColumns = []*schema.Column{
		{Name: "skill_id", Type: field.TypeString},
		{Name: "prerequisite_id", Type: field.TypeString},
		{Name: "weight", Type: field.TypeFloat64, Default: 1},
	}
	SkillEdgesTable = &schema.Table{
		Name:       "skill_edges",
		Columns:    SkillEdgesColumns,
		PrimaryKey: []*schema.Column{SkillEdgesColumns[0], SkillEdgesColumns[1]},
		Indexes: []*schema.Index{
			{Name: "skilledge_prerequisite_id", Columns: []*schema.Column{SkillEdgesColumns[1]}},
		},
	}

	SkillClustersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "career_path", Type: field.TypeString, Default: ""},
		{Name: "description", Type: field.TypeString, Default: ""},
	}
	SkillClustersTable = &schema.Table{
		Name:       "skill_clusters",
		Columns:    SkillClustersColumns,
		PrimaryKey: []*schema.Column{SkillClustersColumns[0]},
	}

	ClusterSkillsColumns = []*schema.Column{
		{Name: "cluster_id", Type: field.TypeString},
		{Name: "skill_id", Type: field.TypeString, Unique: true},
	}
	ClusterSkillsTable = &schema.Table{
		Name:       "cluster_skills",
		Columns:    ClusterSkillsColumns,
		PrimaryKey: []*schema.Column{ClusterSkillsColumns[0], ClusterSkillsColumns[1]},
	}

	UserSkillStatesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "skill_id", Type: field.TypeString},
		{Name: "level", Type: field.TypeInt},
		{Name: "baseline", Type: field.TypeInt},
		{Name: "is_unlocked", Type: field.TypeBool},
		{Name: "unlocked_at", Type: field.TypeTime, Nullable: true},
		{Name: "last_practiced", Type: field.TypeTime, Nullable: true},
		{Name: "mastered_at", Type: field.TypeTime, Nullable: true},
		{Name: "reinforcement_count", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	UserSkillStatesTable = &schema.Table{
		Name:       "user_skill_states",
		Columns:    UserSkillStatesColumns,
		PrimaryKey: []*schema.Column{UserSkillStatesColumns[0], UserSkillStatesColumns[1]},
	}

	RecommendationsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "skill_id", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt},
		{Name: "kind", Type: field.TypeString},
		{Name: "reason", Type: field.TypeString},
		{Name: "is_active", Type: field.TypeBool},
		{Name: "rank", Type: field.TypeInt},
		{Name: "updated_at", Type: field.TypeTime},
	}
	RecommendationsTable = &schema.Table{
		Name:       "recommendations",
		Columns:    RecommendationsColumns,
		PrimaryKey: []*schema.Column{RecommendationsColumns[0], RecommendationsColumns[1]},
		Indexes: []*schema.Index{
			{Name: "recommendation_user_id_is_active", Columns: []*schema.Column{RecommendationsColumns[0], RecommendationsColumns[5]}},
		},
	}

	ReadinessScoresColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "placement_readiness", Type: field.TypeInt},
		{Name: "skills_mastered", Type: field.TypeInt},
		{Name: "skills_tracked", Type: field.TypeInt},
		{Name: "average_mastery", Type: field.TypeFloat64},
		{Name: "coverage", Type: field.TypeFloat64},
		{Name: "consistency_score", Type: field.TypeInt},
		{Name: "goal_progress", Type: field.TypeInt},
		{Name: "interview_score", Type: field.TypeInt},
		{Name: "categories", Type: field.TypeJSON, Nullable: true},
		{Name: "computed_at", Type: field.TypeTime},
	}
	ReadinessScoresTable = &schema.Table{
		Name:       "readiness_scores",
		Columns:    ReadinessScoresColumns,
		PrimaryKey: []*schema.Column{ReadinessScoresColumns[0]},
		Indexes: []*schema.Index{
			{Name: "readinessscore_user_id", Unique: true, Columns: []*schema.Column{ReadinessScoresColumns[1]}},
		},
	}

	LearningActivitiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "kind", Type: field.TypeString, Default: ""},
		{Name: "skill_ids", Type: field.TypeJSON},
		{Name: "performance", Type: field.TypeFloat64, Nullable: true},
		{Name: "completed_at", Type: field.TypeTime},
	}
	LearningActivitiesTable = &schema.Table{
		Name:       "learning_activities",
		Columns:    LearningActivitiesColumns,
		PrimaryKey: []*schema.Column{LearningActivitiesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "learningactivity_user_id_completed_at", Columns: []*schema.Column{LearningActivitiesColumns[1], LearningActivitiesColumns[6]}},
		},
	}

	LearnerSignalsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "goal_progress", Type: field.TypeInt, Nullable: true},
		{Name: "interview_score", Type: field.TypeInt, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	LearnerSignalsTable = &schema.Table{
		Name:       "learner_signals",
		Columns:    LearnerSignalsColumns,
		PrimaryKey: []*schema.Column{LearnerSignalsColumns[0]},
	}

	SkillEventsColumns = []*schema.Column{
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeString},
		{Name: "skill_id", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "from_level", Type: field.TypeInt},
		{Name: "to_level", Type: field.TypeInt},
	}
	SkillEventsTable = &schema.Table{
		Name:       "skill_events",
		Columns:    SkillEventsColumns,
		PrimaryKey: []*schema.Column{SkillEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "skillevent_user_id_sequence", Columns: []*schema.Column{SkillEventsColumns[2], SkillEventsColumns[0]}},
		},
	}

	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LearnersTable,
		SkillsTable,
		SkillEdgesTable,
		SkillClustersTable,
		ClusterSkillsTable,
		UserSkillStatesTable,
		RecommendationsTable,
		ReadinessScoresTable,
		LearningActivitiesTable,
		LearnerSignalsTable,
		SkillEventsTable,
		GlobalSequenceTable,
	}
)
