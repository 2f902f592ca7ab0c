package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/skillforge/internal/graphview"
	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/readiness"
	"github.com/abhisek/skillforge/internal/recommend"
	"github.com/abhisek/skillforge/internal/skillgraph"
	"github.com/abhisek/skillforge/internal/spacedrep"
	"github.com/abhisek/skillforge/internal/store"
)

// GraphView projects the catalog with the learner's stored state. It does
// not recompute; callers that want fresh decay call Recompute first.
func (s *Service) GraphView(ctx context.Context, userID string) (graphview.View, error) {
	g, states, err := s.loadStates(ctx, userID)
	if err != nil {
		return graphview.View{}, err
	}
	return graphview.Project(g, states), nil
}

// SkillStates returns the learner's stored states keyed by skill.
func (s *Service) SkillStates(ctx context.Context, userID string) (map[string]mastery.State, error) {
	_, states, err := s.loadStates(ctx, userID)
	return states, err
}

// Recommendations returns the learner's active recommendations in rank
// order. Skills that have left the catalog are skipped.
func (s *Service) Recommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error) {
	userID, err := s.requireLearner(ctx, userID)
	if err != nil {
		return nil, err
	}
	g, err := s.currentGraph()
	if err != nil {
		return nil, err
	}
	records, err := s.learners.ActiveRecommendations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	states, err := s.learners.SkillStates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	mastered := recommend.MasteredSet(statesByID(states))

	out := make([]recommend.Recommendation, 0, len(records))
	for _, r := range records {
		rec, ok := recommendationFromRecord(g, r)
		if !ok {
			continue
		}
		rec.PrerequisitesMet, _ = g.PrerequisiteProgress(r.SkillID, mastered)
		out = append(out, rec)
	}
	return out, nil
}

// Readiness returns the most recently computed readiness score. It returns
// a *NotFoundError for unknown learners and store.ErrNotFound when nothing
// was computed yet.
func (s *Service) Readiness(ctx context.Context, userID string) (readiness.Score, error) {
	userID, err := s.requireLearner(ctx, userID)
	if err != nil {
		return readiness.Score{}, err
	}
	r, err := s.learners.Readiness(ctx, userID)
	if err != nil {
		return readiness.Score{}, err
	}
	return readinessFromRecord(r), nil
}

// SetSignals stores the learner's external signals and recomputes so the
// readiness score reflects them.
func (s *Service) SetSignals(ctx context.Context, userID string, sig readiness.Signals) (*Result, error) {
	for name, v := range map[string]*int{"goal_progress": sig.GoalProgress, "interview_score": sig.InterviewScore} {
		if v != nil && (*v < mastery.MinLevel || *v > mastery.MaxLevel) {
			return nil, &ValidationError{Field: name, Reason: "must be between 0 and 100"}
		}
	}
	userID, err := s.requireLearner(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := store.SignalsRecord{GoalProgress: sig.GoalProgress, InterviewScore: sig.InterviewScore, UpdatedAt: s.now()}
	if err := s.learners.SetSignals(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("set signals: %w", err)
	}
	return s.Recompute(ctx, userID)
}

// Signals returns the learner's stored signals.
func (s *Service) Signals(ctx context.Context, userID string) (readiness.Signals, error) {
	userID, err := s.requireLearner(ctx, userID)
	if err != nil {
		return readiness.Signals{}, err
	}
	r, err := s.learners.Signals(ctx, userID)
	if err != nil {
		return readiness.Signals{}, err
	}
	return signalsFromRecord(r), nil
}

// Events returns the learner's skill audit log.
func (s *Service) Events(ctx context.Context, userID string, opts store.QueryOpts) ([]store.SkillEventRecord, error) {
	userID, err := s.requireLearner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.learners.SkillEvents(ctx, userID, opts)
}

// Activities returns up to limit of the learner's activities, newest first.
func (s *Service) Activities(ctx context.Context, userID string, limit int) ([]store.ActivityRecord, error) {
	userID, err := s.requireLearner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.learners.Activities(ctx, userID, limit)
}

// ReviewItem is a scheduled review with its status at the time of the call.
type ReviewItem struct {
	spacedrep.Review
	Name        string                 `json:"name"`
	Status      spacedrep.ReviewStatus `json:"status"`
	OverdueDays float64                `json:"overdue_days"`
}

// Reviews returns the review queue of a learner's mastered skills, ordered
// by due date. Skills no longer in the catalog are skipped.
func (s *Service) Reviews(ctx context.Context, userID string) ([]ReviewItem, error) {
	g, states, err := s.loadStates(ctx, userID)
	if err != nil {
		return nil, err
	}
	tracked := make([]mastery.State, 0, len(states))
	for id, st := range states {
		if g.Has(id) {
			tracked = append(tracked, st)
		}
	}
	rateFor := func(id string) float64 {
		sk, _ := g.Skill(id)
		return s.opts.rateFor(sk)
	}

	now := s.now()
	queue := spacedrep.Queue(tracked, rateFor, s.opts.DecayFloor)
	out := make([]ReviewItem, 0, len(queue))
	for _, r := range queue {
		sk, _ := g.Skill(r.SkillID)
		out = append(out, ReviewItem{
			Review:      r,
			Name:        sk.Name,
			Status:      r.Status(now),
			OverdueDays: r.OverdueDays(now),
		})
	}
	return out, nil
}

// Learners lists every provisioned learner.
func (s *Service) Learners(ctx context.Context) ([]store.Learner, error) {
	return s.learners.ListLearners(ctx)
}

func (s *Service) requireLearner(ctx context.Context, userID string) (string, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return "", err
	}
	if _, err := s.learners.GetLearner(ctx, userID); err != nil {
		return "", learnerNotFound(err, userID)
	}
	return userID, nil
}

func (s *Service) loadStates(ctx context.Context, userID string) (*skillgraph.Graph, map[string]mastery.State, error) {
	userID, err := s.requireLearner(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	g, err := s.currentGraph()
	if err != nil {
		return nil, nil, err
	}
	records, err := s.learners.SkillStates(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load states: %w", err)
	}
	return g, statesByID(records), nil
}

// IsNotFound reports whether err means a learner, skill or record is
// missing.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
