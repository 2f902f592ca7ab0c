package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/skillforge/internal/skillgraph"
)

// ErrNotFound is returned when a requested learner or record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	SkillID string    // only events for this skill
}

// Learner is a provisioned user.
type Learner struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SkillStateRecord is the persisted form of one learner's progress on one
// skill.
type SkillStateRecord struct {
	SkillID            string
	Level              int
	Baseline           int
	Unlocked           bool
	UnlockedAt         *time.Time
	LastPracticed      *time.Time
	MasteredAt         *time.Time
	ReinforcementCount int
	UpdatedAt          time.Time
}

// RecommendationRecord is a stored recommendation.
type RecommendationRecord struct {
	SkillID   string
	Score     int
	Kind      string
	Reason    string
	Active    bool
	Rank      int
	UpdatedAt time.Time
}

// ReadinessRecord is one computed readiness score.
type ReadinessRecord struct {
	PlacementReadiness int
	SkillsMastered     int
	SkillsTracked      int
	AverageMastery     float64
	Coverage           float64
	ConsistencyScore   int
	GoalProgress       int
	InterviewScore     int
	Categories         map[string]int
	ComputedAt         time.Time
}

// ActivityRecord is a completed learning activity.
type ActivityRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	SkillIDs    []string  `json:"skill_ids"`
	Performance *float64  `json:"performance,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// SignalsRecord holds externally measured readiness inputs.
type SignalsRecord struct {
	GoalProgress   *int
	InterviewScore *int
	UpdatedAt      time.Time
}

// SkillEventRecord is one entry of the skill audit log.
type SkillEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	UserID    string
	SkillID   string
	Kind      string
	FromLevel int
	ToLevel   int
}

// LearnerWrite is everything one recompute persists. It is applied in a
// single transaction: either all of it lands or none of it does.
type LearnerWrite struct {
	UserID string

	// States are upserted by skill.
	States []SkillStateRecord

	// Recommendations replace the learner's active set. When nil the
	// stored recommendations are left alone.
	Recommendations []RecommendationRecord

	// Readiness is appended to the history when non-nil.
	Readiness *ReadinessRecord

	// Activity is inserted when non-nil.
	Activity *ActivityRecord

	Events []SkillEventRecord
}

// CatalogRepo manages the skill catalog.
type CatalogRepo interface {
	// LoadCatalog returns the stored catalog. An empty database yields an
	// empty catalog and no error.
	LoadCatalog(ctx context.Context) (skillgraph.Catalog, error)

	// ReplaceCatalog swaps the stored catalog for c in one transaction.
	// Callers validate c first.
	ReplaceCatalog(ctx context.Context, c skillgraph.Catalog) error

	// SkillCount returns the number of stored skills.
	SkillCount(ctx context.Context) (int, error)
}

// LearnerRepo manages per-learner state.
type LearnerRepo interface {
	// EnsureLearner creates the learner if needed and reports whether it
	// was created.
	EnsureLearner(ctx context.Context, userID string) (bool, error)

	// GetLearner returns ErrNotFound for unknown ids.
	GetLearner(ctx context.Context, userID string) (*Learner, error)

	// ListLearners returns every learner ordered by id.
	ListLearners(ctx context.Context) ([]Learner, error)

	SkillStates(ctx context.Context, userID string) ([]SkillStateRecord, error)

	// RecentCompletions returns up to limit activity completion times,
	// newest first.
	RecentCompletions(ctx context.Context, userID string, limit int) ([]time.Time, error)

	// Activities returns up to limit activities, newest first.
	Activities(ctx context.Context, userID string, limit int) ([]ActivityRecord, error)

	// Signals returns the learner's signals; unset signals are nil.
	Signals(ctx context.Context, userID string) (SignalsRecord, error)
	SetSignals(ctx context.Context, userID string, sig SignalsRecord) error

	// ActiveRecommendations returns the active set ordered by rank.
	ActiveRecommendations(ctx context.Context, userID string) ([]RecommendationRecord, error)

	// Readiness returns ErrNotFound when no score was computed yet.
	Readiness(ctx context.Context, userID string) (*ReadinessRecord, error)

	SkillEvents(ctx context.Context, userID string, opts QueryOpts) ([]SkillEventRecord, error)

	// SaveLearner applies w atomically.
	SaveLearner(ctx context.Context, w LearnerWrite) error
}
