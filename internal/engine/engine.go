// Package engine runs the per-learner recompute batch: load, decay, unlock,
// recommend, score readiness, and persist. Work for one learner is
// serialized through a userlock.Locker; concurrent recompute requests for
// the same learner share one run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/observability"
	"github.com/abhisek/skillforge/internal/platform/logger"
	"github.com/abhisek/skillforge/internal/readiness"
	"github.com/abhisek/skillforge/internal/recommend"
	"github.com/abhisek/skillforge/internal/skillgraph"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/abhisek/skillforge/internal/userlock"
)

// Options are the tunable numbers of the recompute.
type Options struct {
	// DecayRate applies to skills without their own rate.
	DecayRate  float64
	DecayFloor float64
	Recommend  recommend.Options
	Readiness  readiness.Weights
}

// DefaultOptions returns the standard engine settings.
func DefaultOptions() Options {
	return Options{
		DecayRate: mastery.DefaultDecayRate,
		Recommend: recommend.DefaultOptions(),
		Readiness: readiness.DefaultWeights(),
	}
}

func (o Options) rateFor(s skillgraph.Skill) float64 {
	if s.DecayRate > 0 {
		return s.DecayRate
	}
	return o.DecayRate
}

func (o Options) validate() error {
	if o.DecayRate < 0 {
		return &ValidationError{Field: "decay rate", Reason: "must not be negative"}
	}
	if o.Recommend.Limit < 1 || o.Recommend.Persist < 0 || o.Recommend.Persist > o.Recommend.Limit {
		return &ValidationError{Field: "recommend options", Reason: fmt.Sprintf("limit %d persist %d", o.Recommend.Limit, o.Recommend.Persist)}
	}
	return o.Readiness.Validate()
}

// Hook is notified after a recompute has been committed. Roadmap and job
// match generators plug in here.
type Hook interface {
	AfterRecompute(ctx context.Context, userID string, res *Result) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, userID string, res *Result) error

func (f HookFunc) AfterRecompute(ctx context.Context, userID string, res *Result) error {
	return f(ctx, userID, res)
}

// Deps are the collaborators of a Service. Catalog and Learners are
// required; the rest default to in-process or no-op implementations.
type Deps struct {
	Catalog  store.CatalogRepo
	Learners store.LearnerRepo
	Locker   userlock.Locker
	Logger   *logger.Logger
	Metrics  *observability.Metrics
	Hooks    map[string]Hook

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Service is the skill engine. It is safe for concurrent use.
type Service struct {
	catalog  store.CatalogRepo
	learners store.LearnerRepo
	locker   userlock.Locker
	log      *logger.Logger
	metrics  *observability.Metrics
	hooks    map[string]Hook
	now      func() time.Time
	opts     Options

	graph    atomic.Pointer[skillgraph.Graph]
	importMu sync.Mutex
	flight   singleflight.Group
}

// New creates a Service. Call Bootstrap before serving requests.
func New(d Deps, opts Options) (*Service, error) {
	if d.Catalog == nil || d.Learners == nil {
		return nil, errors.New("engine: catalog and learner repos are required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s := &Service{
		catalog:  d.Catalog,
		learners: d.Learners,
		locker:   d.Locker,
		log:      d.Logger,
		metrics:  d.Metrics,
		hooks:    d.Hooks,
		now:      d.Now,
		opts:     opts,
	}
	if s.locker == nil {
		s.locker = userlock.NewLocalLocker()
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Options returns the settings the service runs with.
func (s *Service) Options() Options {
	return s.opts
}

// Graph returns the current catalog graph, or nil before Bootstrap.
func (s *Service) Graph() *skillgraph.Graph {
	return s.graph.Load()
}

func (s *Service) currentGraph() (*skillgraph.Graph, error) {
	g := s.graph.Load()
	if g == nil {
		return nil, ErrNotReady
	}
	return g, nil
}

// Bootstrap loads the stored catalog into memory. An empty database is
// first seeded with the built-in catalog. A stored catalog that fails
// validation is returned as a *skillgraph.IntegrityError.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.importMu.Lock()
	defer s.importMu.Unlock()

	n, err := s.catalog.SkillCount(ctx)
	if err != nil {
		return fmt.Errorf("count skills: %w", err)
	}
	if n == 0 {
		s.log.Info("seeding empty database with built-in catalog")
		if err := s.catalog.ReplaceCatalog(ctx, skillgraph.DefaultCatalog()); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	c, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	g, err := skillgraph.New(c)
	if err != nil {
		return err
	}
	s.graph.Store(g)
	s.log.Info("catalog loaded", "skills", g.Len(), "edges", len(g.Edges()), "clusters", len(g.Clusters()))
	return nil
}

// ImportCatalog validates c, replaces the stored catalog, and swaps the
// in-memory graph. An invalid catalog changes nothing.
func (s *Service) ImportCatalog(ctx context.Context, c skillgraph.Catalog) (*skillgraph.Graph, error) {
	g, err := skillgraph.New(c)
	if err != nil {
		return nil, err
	}

	s.importMu.Lock()
	defer s.importMu.Unlock()

	if err := s.catalog.ReplaceCatalog(ctx, g.Catalog()); err != nil {
		return nil, fmt.Errorf("replace catalog: %w", err)
	}
	s.graph.Store(g)
	s.log.Info("catalog imported", "skills", g.Len(), "edges", len(g.Edges()), "clusters", len(g.Clusters()))
	return g, nil
}

// SeedFoundation provisions a learner: it creates the learner if needed and
// an unlocked level-0 state for every root skill, then recomputes. Calling
// it again for the same learner adds nothing.
func (s *Service) SeedFoundation(ctx context.Context, userID string) (*Result, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	created, err := s.learners.EnsureLearner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure learner: %w", err)
	}
	if created {
		s.log.Info("learner provisioned", "user_id", userID)
	}

	return s.locked(ctx, userID, func(g *skillgraph.Graph, ls *learnerState) error {
		now := s.now()
		for _, root := range g.RootSkills() {
			if _, ok := ls.states[root.ID]; ok {
				continue
			}
			st := mastery.Unlock(mastery.NewState(root.ID), now)
			ls.states[root.ID] = st
			ls.prior[root.ID] = st
			ls.dirty[root.ID] = true
			ls.extra = append(ls.extra, mastery.Transition{
				SkillID: root.ID,
				Kind:    mastery.EventSeeded,
				At:      now,
			})
		}
		return nil
	})
}

// Recompute runs the full batch for one learner and persists the result.
// Concurrent calls for the same learner share a single run.
func (s *Service) Recompute(ctx context.Context, userID string) (*Result, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	v, err, _ := s.flight.Do(userID, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		return s.locked(context.WithoutCancel(ctx), userID, nil)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// RecomputeAll recomputes every learner, stopping at the first error.
func (s *Service) RecomputeAll(ctx context.Context) (int, error) {
	learners, err := s.learners.ListLearners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list learners: %w", err)
	}
	for i, l := range learners {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := s.Recompute(ctx, l.ID); err != nil {
			return i, fmt.Errorf("recompute %s: %w", l.ID, err)
		}
	}
	return len(learners), nil
}

// learnerState is the working copy of one learner during a locked run.
type learnerState struct {
	prior  map[string]mastery.State
	states map[string]mastery.State

	// dirty marks rows to persist even when plan sees no change.
	dirty map[string]bool

	activity *store.ActivityRecord
	extra    []mastery.Transition
	warnings []error
}

// mutation changes a learner's states before planning. It runs under the
// learner's lock.
type mutation func(g *skillgraph.Graph, ls *learnerState) error

// locked loads a learner, applies mutate, plans, persists, and runs hooks,
// all while holding the learner's lock.
func (s *Service) locked(ctx context.Context, userID string, mutate mutation) (res *Result, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRecompute(outcome(err), time.Since(start))
	}()

	g, err := s.currentGraph()
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock learner: %w", err)
	}
	defer unlock()

	if _, err := s.learners.GetLearner(ctx, userID); err != nil {
		return nil, learnerNotFound(err, userID)
	}

	records, err := s.learners.SkillStates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	ls := &learnerState{
		prior:  statesByID(records),
		states: statesByID(records),
		dirty:  make(map[string]bool),
	}
	if mutate != nil {
		if err := mutate(g, ls); err != nil {
			return nil, err
		}
	}

	completions, err := s.learners.RecentCompletions(ctx, userID, readiness.ConsistencyWindow)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}
	if ls.activity != nil {
		completions = append(completions, ls.activity.CompletedAt)
	}
	sig, err := s.learners.Signals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}

	now := s.now()
	out := plan(planInput{
		graph:       g,
		prior:       ls.prior,
		states:      ls.states,
		dirty:       ls.dirty,
		completions: completions,
		signals:     signalsFromRecord(sig),
		now:         now,
		opts:        s.opts,
	})
	res = out.result
	res.UserID = userID
	res.Transitions = append(ls.extra, res.Transitions...)
	res.Warnings = append(ls.warnings, res.Warnings...)

	persist := res.Recommendations
	if len(persist) > s.opts.Recommend.Persist {
		persist = persist[:s.opts.Recommend.Persist]
	}
	write := store.LearnerWrite{
		UserID:          userID,
		Recommendations: recommendationRecords(persist, now),
		Readiness:       readinessRecord(res.Readiness),
		Activity:        ls.activity,
		Events:          eventRecords(userID, res.Transitions),
	}
	for _, st := range out.changed {
		write.States = append(write.States, stateToRecord(st))
	}
	if write.Recommendations == nil {
		write.Recommendations = []store.RecommendationRecord{}
	}
	if err := s.learners.SaveLearner(ctx, write); err != nil {
		return nil, fmt.Errorf("save learner: %w", err)
	}

	for _, w := range res.Warnings {
		s.metrics.IncStateWarning()
		s.log.Warn("clamped invalid skill state", "user_id", userID, "error", w)
	}
	s.metrics.AddUnlocks(len(res.NewlyUnlocked))
	s.metrics.AddReinforcements(lo.CountBy(res.Transitions, func(t mastery.Transition) bool {
		return t.Kind == mastery.EventReinforced
	}))
	s.metrics.AddRecommendationsPersisted(len(persist))
	s.log.Debug("recompute committed",
		"user_id", userID,
		"unlocked", len(res.NewlyUnlocked),
		"recommendations", len(res.Recommendations),
		"readiness", res.Readiness.PlacementReadiness,
		"events", len(res.Transitions),
	)

	s.runHooks(ctx, userID, res)
	return res, nil
}

func (s *Service) runHooks(ctx context.Context, userID string, res *Result) {
	for _, name := range slices.Sorted(maps.Keys(s.hooks)) {
		h := s.hooks[name]
		if err := h.AfterRecompute(ctx, userID, res); err != nil {
			herr := &ExternalServiceError{Service: name, Err: err}
			s.metrics.IncHookFailure(name)
			s.log.Warn("post-recompute hook failed", "user_id", userID, "hook", name, "error", herr)
		}
	}
}

func outcome(err error) string {
	var ierr *skillgraph.IntegrityError
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.As(err, &ierr):
		return observability.OutcomeIntegrity
	default:
		return observability.OutcomeError
	}
}
