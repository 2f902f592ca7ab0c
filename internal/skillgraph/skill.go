package skillgraph

// Category labels a skill's subject area. The set is open: catalogs may
// introduce labels beyond the built-in ones.
type Category string

const (
	CategoryProgramming Category = "Programming"
	CategoryFrontend    Category = "Frontend"
	CategoryBackend     Category = "Backend"
	CategoryDatabase    Category = "Database"
	CategoryDevOps      Category = "DevOps"
	CategoryAIML        Category = "AI/ML"
	CategoryMobile      Category = "Mobile"
	CategoryDesign      Category = "Design"
)

// KnownCategories returns the built-in categories in display order.
func KnownCategories() []Category {
	return []Category{
		CategoryProgramming,
		CategoryFrontend,
		CategoryBackend,
		CategoryDatabase,
		CategoryDevOps,
		CategoryAIML,
		CategoryMobile,
		CategoryDesign,
	}
}

// Difficulty bounds for catalog skills.
const (
	MinDifficulty = 1
	MaxDifficulty = 10
)

// DefaultEdgeWeight is applied to prerequisite edges declared without a weight.
const DefaultEdgeWeight = 1.0

// Skill represents a single node in the prerequisite graph.
type Skill struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category       Category `json:"category" yaml:"category"`
	Difficulty     int      `json:"difficulty" yaml:"difficulty"`
	EstimatedHours float64  `json:"estimated_hours" yaml:"estimated_hours"`

	// DecayRate is the per-day forgetting rate for this skill.
	// Zero means the engine-wide default applies.
	DecayRate float64 `json:"decay_rate,omitempty" yaml:"decay_rate,omitempty"`
}

// Edge declares that SkillID requires PrerequisiteID.
// Weight only affects presentation (link thickness).
type Edge struct {
	SkillID        string  `json:"skill_id" yaml:"skill"`
	PrerequisiteID string  `json:"prerequisite_id" yaml:"requires"`
	Weight         float64 `json:"weight" yaml:"weight,omitempty"`
}

// Cluster groups skills that together make up a career path.
type Cluster struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	CareerPath  string   `json:"career_path,omitempty" yaml:"career_path,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	SkillIDs    []string `json:"skill_ids" yaml:"skills"`
}

// Catalog is the unvalidated input a Graph is built from.
type Catalog struct {
	Skills   []Skill   `json:"skills"`
	Edges    []Edge    `json:"edges"`
	Clusters []Cluster `json:"clusters"`
}
