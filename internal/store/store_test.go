package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entschema "github.com/abhisek/skillforge/ent/schema"
	"github.com/abhisek/skillforge/internal/skillgraph"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Driver() == nil {
		t.Fatal("expected non-nil driver")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, tbl := range Tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", tbl.Name,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", tbl.Name, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.LearnerRepo().EnsureLearner(context.Background(), "u1")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.LearnerRepo().GetLearner(context.Background(), "u1")
	assert.NoError(t, err)
}

func TestReopenCompactsReadinessHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.LearnerRepo().EnsureLearner(ctx, "u1")
	require.NoError(t, err)

	// Older databases appended a readiness row per recompute.
	_, err = s.DB().ExecContext(ctx, "DROP INDEX readinessscore_user_id")
	require.NoError(t, err)
	for _, score := range []int{10, 20, 30} {
		_, err = s.DB().ExecContext(ctx, `INSERT INTO readiness_scores
			(user_id, placement_readiness, skills_mastered, skills_tracked, average_mastery, coverage,
			 consistency_score, goal_progress, interview_score, computed_at)
			VALUES (?, ?, 0, 0, 0, 0, 50, 50, 50, ?)`, "u1", score, time.Now().UTC())
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM readiness_scores WHERE user_id = ?", "u1").Scan(&n))
	assert.Equal(t, 1, n)
	rd, err := s.LearnerRepo().Readiness(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, rd.PlacementReadiness)
}

// Every field declared on an entity must exist as a column of the table
// the store migrates for it.
func TestEntSchemaMatchesTables(t *testing.T) {
	fields := func(fs ...[]ent.Field) []string {
		var names []string
		for _, group := range fs {
			for _, f := range group {
				names = append(names, f.Descriptor().Name)
			}
		}
		return names
	}

	tests := []struct {
		entity string
		fields []string
		table  string
	}{
		{"Learner", fields(entschema.Learner{}.Fields()), LearnersTable.Name},
		{"Skill", fields(entschema.Skill{}.Fields()), SkillsTable.Name},
		{"SkillEdge", fields(entschema.SkillEdge{}.Fields()), SkillEdgesTable.Name},
		{"SkillCluster", fields(entschema.SkillCluster{}.Fields()), SkillClustersTable.Name},
		{"ClusterSkill", fields(entschema.ClusterSkill{}.Fields()), ClusterSkillsTable.Name},
		{"UserSkillState", fields(entschema.UserSkillState{}.Fields()), UserSkillStatesTable.Name},
		{"Recommendation", fields(entschema.Recommendation{}.Fields()), RecommendationsTable.Name},
		{"ReadinessScore", fields(entschema.ReadinessScore{}.Fields()), ReadinessScoresTable.Name},
		{"LearningActivity", fields(entschema.LearningActivity{}.Fields()), LearningActivitiesTable.Name},
		{"LearnerSignals", fields(entschema.LearnerSignals{}.Fields()), LearnerSignalsTable.Name},
		{"SkillEvent", fields(entschema.SkillEvent{}.Fields()), SkillEventsTable.Name},
	}

	byName := make(map[string]map[string]bool)
	for _, tbl := range Tables {
		cols := make(map[string]bool)
		for _, c := range tbl.Columns {
			cols[c.Name] = true
		}
		byName[tbl.Name] = cols
	}

	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			cols, ok := byName[tt.table]
			require.True(t, ok, "table %s not migrated", tt.table)
			for _, f := range tt.fields {
				assert.True(t, cols[f], "field %s.%s has no column in %s", tt.entity, f, tt.table)
			}
		})
	}
}

func TestEntSchemaUniqueIndexes(t *testing.T) {
	tests := []struct {
		entity  string
		indexes []ent.Index
		table   *schema.Table
	}{
		{"ReadinessScore", entschema.ReadinessScore{}.Indexes(), ReadinessScoresTable},
		{"SkillEvent", entschema.SkillEvent{}.Indexes(), SkillEventsTable},
	}
	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			unique := make(map[string]bool)
			for _, idx := range tt.table.Indexes {
				var cols []string
				for _, c := range idx.Columns {
					cols = append(cols, c.Name)
				}
				unique[strings.Join(cols, ",")] = idx.Unique
			}
			for _, idx := range tt.indexes {
				d := idx.Descriptor()
				key := strings.Join(d.Fields, ",")
				got, ok := unique[key]
				require.True(t, ok, "index on %s missing from %s", key, tt.table.Name)
				assert.Equal(t, d.Unique, got, "uniqueness of %s on %s", key, tt.table.Name)
			}
		})
	}
}

func TestCatalogReplaceAndLoad(t *testing.T) {
	s := openTestStore(t)
	repo := s.CatalogRepo()
	ctx := context.Background()

	n, err := repo.SkillCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	empty, err := repo.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Skills)

	want := skillgraph.DefaultCatalog()
	require.NoError(t, repo.ReplaceCatalog(ctx, want))

	got, err := repo.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Skills, got.Skills, "skills keep catalog order")
	assert.Len(t, got.Edges, len(want.Edges))
	assert.Len(t, got.Clusters, len(want.Clusters))

	g, err := skillgraph.New(got)
	require.NoError(t, err)
	assert.Equal(t, 25, g.Len())

	small := skillgraph.Catalog{Skills: []skillgraph.Skill{
		{ID: "solo", Name: "Solo", Category: skillgraph.CategoryDesign, Difficulty: 2, EstimatedHours: 1},
	}}
	require.NoError(t, repo.ReplaceCatalog(ctx, small))
	got, err = repo.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, small.Skills, got.Skills)
	assert.Empty(t, got.Edges)
	assert.Empty(t, got.Clusters)
}

func TestEnsureLearner(t *testing.T) {
	s := openTestStore(t)
	repo := s.LearnerRepo()
	ctx := context.Background()

	_, err := repo.GetLearner(ctx, "ada")
	assert.True(t, errors.Is(err, ErrNotFound))

	created, err := repo.EnsureLearner(ctx, "ada")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.EnsureLearner(ctx, "ada")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = repo.EnsureLearner(ctx, "bob")
	require.NoError(t, err)
	all, err := repo.ListLearners(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ada", all[0].ID)
}

func TestSaveLearner_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.LearnerRepo()
	ctx := context.Background()
	_, err := repo.EnsureLearner(ctx, "ada")
	require.NoError(t, err)

	practiced := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	perf := 0.9
	w := LearnerWrite{
		UserID: "ada",
		States: []SkillStateRecord{
			{SkillID: "git", Level: 75, Baseline: 80, Unlocked: true, UnlockedAt: &practiced, LastPracticed: &practiced, MasteredAt: &practiced, ReinforcementCount: 8},
			{SkillID: "sql", Unlocked: true, UnlockedAt: &practiced},
		},
		Recommendations: []RecommendationRecord{
			{SkillID: "sql", Score: 80, Kind: "next", Reason: "Ready to learn: 0 prerequisites met"},
			{SkillID: "linux", Score: 70, Kind: "next", Reason: "Ready to learn: 0 prerequisites met"},
		},
		Readiness: &ReadinessRecord{
			PlacementReadiness: 41, SkillsMastered: 1, SkillsTracked: 2, AverageMastery: 37.5, Coverage: 50,
			ConsistencyScore: 50, GoalProgress: 50, InterviewScore: 50,
			Categories: map[string]int{"Programming": 12}, ComputedAt: practiced,
		},
		Activity: &ActivityRecord{ID: "act-1", UserID: "ada", Title: "Git basics", Kind: "lesson", SkillIDs: []string{"git"}, Performance: &perf, CompletedAt: practiced},
		Events: []SkillEventRecord{
			{SkillID: "git", Kind: "reinforced", FromLevel: 70, ToLevel: 80, Timestamp: practiced},
			{SkillID: "sql", Kind: "unlocked", Timestamp: practiced},
		},
	}
	require.NoError(t, repo.SaveLearner(ctx, w))

	states, err := repo.SkillStates(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, states, 2)
	git := states[0]
	assert.Equal(t, "git", git.SkillID)
	assert.Equal(t, 75, git.Level)
	assert.Equal(t, 80, git.Baseline)
	assert.True(t, git.Unlocked)
	assert.Equal(t, 8, git.ReinforcementCount)
	require.NotNil(t, git.LastPracticed)
	assert.True(t, git.LastPracticed.Equal(practiced))
	require.NotNil(t, git.MasteredAt)
	assert.Nil(t, states[1].LastPracticed)
	assert.Nil(t, states[1].MasteredAt)

	recs, err := repo.ActiveRecommendations(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "sql", recs[0].SkillID)
	assert.Equal(t, 1, recs[0].Rank)
	assert.True(t, recs[0].Active)

	rd, err := repo.Readiness(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 41, rd.PlacementReadiness)
	assert.Equal(t, map[string]int{"Programming": 12}, rd.Categories)
	assert.True(t, rd.ComputedAt.Equal(practiced))

	acts, err := repo.Activities(ctx, "ada", 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, []string{"git"}, acts[0].SkillIDs)
	require.NotNil(t, acts[0].Performance)
	assert.InDelta(t, 0.9, *acts[0].Performance, 1e-9)

	completions, err := repo.RecentCompletions(ctx, "ada", 10)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.True(t, completions[0].Equal(practiced))

	events, err := repo.SkillEvents(ctx, "ada", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, events[0].Sequence+1, events[1].Sequence)
	assert.Equal(t, "reinforced", events[0].Kind)
}

func TestSaveLearner_ReplacesActiveRecommendations(t *testing.T) {
	s := openTestStore(t)
	repo := s.LearnerRepo()
	ctx := context.Background()
	_, err := repo.EnsureLearner(ctx, "ada")
	require.NoError(t, err)

	require.NoError(t, repo.SaveLearner(ctx, LearnerWrite{UserID: "ada", Recommendations: []RecommendationRecord{
		{SkillID: "a", Score: 90, Kind: "next"},
		{SkillID: "b", Score: 80, Kind: "next"},
	}}))
	require.NoError(t, repo.SaveLearner(ctx, LearnerWrite{UserID: "ada", Recommendations: []RecommendationRecord{
		{SkillID: "c", Score: 95, Kind: "next"},
		{SkillID: "a", Score: 60, Kind: "review"},
	}}))

	recs, err := repo.ActiveRecommendations(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].SkillID)
	assert.Equal(t, "a", recs[1].SkillID)
	assert.Equal(t, 60, recs[1].Score)
	assert.Equal(t, "review", recs[1].Kind)

	// nil leaves the active set alone
	require.NoError(t, repo.SaveLearner(ctx, LearnerWrite{UserID: "ada"}))
	recs, err = repo.ActiveRecommendations(ctx, "ada")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestSaveLearner_ReadinessOneRowPerLearner(t *testing.T) {
	s := openTestStore(t)
	repo := s.LearnerRepo()
	ctx := context.Background()
	for _, id := range []string{"ada", "bob"} {
		_, err := repo.EnsureLearner(ctx, id)
		require.NoError(t, err)
	}

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.SaveLearner(ctx, LearnerWrite{
			UserID:    "ada",
			Readiness: &ReadinessRecord{PlacementReadiness: i * 10},
		}))
	}
	require.NoError(t, repo.SaveLearner(ctx, LearnerWrite{
		UserID:    "bob",
		Readiness: &ReadinessRecord{PlacementReadiness: 7},
	}))

	var n int
	require.NoError(t, s.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM readiness_scores WHERE user_id = ?", "ada").Scan(&n))
	assert.Equal(t, 1, n)

	rd, err := repo.Readiness(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 50, rd.PlacementReadiness)

	rd, err = repo.Readiness(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 7, rd.PlacementReadiness)
}

func TestSaveLearner_AtomicOnFailure(t *testing.T) {
	s := openTestStore(t)
	repo := s.LearnerRepo()
	ctx := context.Background()
	_, err := repo.EnsureLearner(ctx, "ada")
	require.NoError(t, err)

	act := ActivityRecord{ID: "dup", UserID: "ada", SkillIDs: []string{"git"}, CompletedAt: time.Now()}
	require.NoError(t, repo.SaveLearner(ctx, LearnerWrite{
		UserID:          "ada",
		States:          []SkillStateRecord{{SkillID: "git", Level: 10, Baseline: 10, Unlocked: true}},
		Recommendations: []RecommendationRecord{{SkillID: "git", Score: 50, Kind: "next"}},
		Activity:        &act,
	}))

	// Re-inserting the same activity id fails after the states were
	// written inside the transaction.
	err = repo.SaveLearner(ctx, LearnerWrite{
		UserID:          "ada",
		States:          []SkillStateRecord{{SkillID: "git", Level: 99, Baseline: 99, Unlocked: true}},
		Recommendations: []RecommendationRecord{{SkillID: "sql", Score: 10, Kind: "next"}},
		Readiness:       &ReadinessRecord{PlacementReadiness: 99},
		Activity:        &act,
	})
	require.Error(t, err)

	states, err := repo.SkillStates(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, 10, states[0].Level)

	recs, err := repo.ActiveRecommendations(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "git", recs[0].SkillID)

	_, err = repo.Readiness(ctx, "ada")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSignals(t *testing.T) {
	s := openTestStore(t)
	repo := s.LearnerRepo()
	ctx := context.Background()

	sig, err := repo.Signals(ctx, "ada")
	require.NoError(t, err)
	assert.Nil(t, sig.GoalProgress)
	assert.Nil(t, sig.InterviewScore)

	goal := 65
	require.NoError(t, repo.SetSignals(ctx, "ada", SignalsRecord{GoalProgress: &goal}))
	sig, err = repo.Signals(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, sig.GoalProgress)
	assert.Equal(t, 65, *sig.GoalProgress)
	assert.Nil(t, sig.InterviewScore)

	interview := 80
	require.NoError(t, repo.SetSignals(ctx, "ada", SignalsRecord{GoalProgress: &goal, InterviewScore: &interview}))
	sig, err = repo.Signals(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, sig.InterviewScore)
	assert.Equal(t, 80, *sig.InterviewScore)
}

func TestSkillEvents_QueryOpts(t *testing.T) {
	s := openTestStore(t)
	repo := s.LearnerRepo()
	ctx := context.Background()
	_, err := repo.EnsureLearner(ctx, "ada")
	require.NoError(t, err)
	_, err = repo.EnsureLearner(ctx, "bob")
	require.NoError(t, err)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var events []SkillEventRecord
	for i := 0; i < 6; i++ {
		skill := "git"
		if i%2 == 1 {
			skill = "sql"
		}
		events = append(events, SkillEventRecord{SkillID: skill, Kind: "decayed", FromLevel: 50, ToLevel: 49, Timestamp: base.Add(time.Duration(i) * time.Hour)})
	}
	require.NoError(t, repo.SaveLearner(ctx, LearnerWrite{UserID: "ada", Events: events}))
	require.NoError(t, repo.SaveLearner(ctx, LearnerWrite{UserID: "bob", Events: events[:1]}))

	all, err := repo.SkillEvents(ctx, "ada", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 6)

	limited, err := repo.SkillEvents(ctx, "ada", QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	after, err := repo.SkillEvents(ctx, "ada", QueryOpts{After: all[3].Sequence})
	require.NoError(t, err)
	assert.Len(t, after, 2)

	sql, err := repo.SkillEvents(ctx, "ada", QueryOpts{SkillID: "sql"})
	require.NoError(t, err)
	assert.Len(t, sql, 3)

	bob, err := repo.SkillEvents(ctx, "bob", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Greater(t, bob[0].Sequence, all[5].Sequence)
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.reserve(ctx, s.Driver(), 1)
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}

	first, err := s.seq.reserve(ctx, s.Driver(), 3)
	if err != nil {
		t.Fatalf("reserve block: %v", err)
	}
	if first != 6 {
		t.Errorf("block start = %d, want 6", first)
	}
	next, err := s.seq.reserve(ctx, s.Driver(), 1)
	if err != nil {
		t.Fatalf("reserve after block: %v", err)
	}
	if next != 9 {
		t.Errorf("after block = %d, want 9", next)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SKILLFORGE_DB", filepath.Join(dir, "nested", "x.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "x.db"), p)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	t.Setenv("SKILLFORGE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "skillforge", "skillforge.db"), p)
}
