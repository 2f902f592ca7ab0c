package engine

import (
	"sort"
	"time"

	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/readiness"
	"github.com/abhisek/skillforge/internal/recommend"
	"github.com/abhisek/skillforge/internal/skillgraph"
)

// Result is the outcome of one recompute.
type Result struct {
	UserID string `json:"user_id"`

	// States holds every tracked skill in the catalog, in topological
	// order.
	States []mastery.State `json:"-"`

	// NewlyUnlocked lists skills unlocked by this recompute.
	NewlyUnlocked   []string                   `json:"newly_unlocked"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Readiness       readiness.Score            `json:"readiness"`
	Transitions     []mastery.Transition       `json:"-"`

	// Warnings are recoverable state problems that were clamped.
	Warnings []error `json:"-"`

	ComputedAt time.Time `json:"computed_at"`
}

// planInput is everything the pure recompute steps need.
type planInput struct {
	graph *skillgraph.Graph

	// prior is the state as loaded (or as seeded); transitions are
	// diffed against it.
	prior map[string]mastery.State

	// states is prior with any mutation applied. plan does not modify it.
	states map[string]mastery.State

	// dirty ids are reported as changed regardless of the diff.
	dirty map[string]bool

	completions []time.Time
	signals     readiness.Signals
	now         time.Time
	opts        Options
}

// planOutput is a Result plus the rows that changed.
type planOutput struct {
	result  *Result
	states  map[string]mastery.State
	changed []mastery.State
}

// refresh applies decay and unlocks to states as of now. It returns the
// new state map, the ids it unlocked, and any clamping warnings.
func refresh(g *skillgraph.Graph, states map[string]mastery.State, now time.Time, opts Options) (map[string]mastery.State, []string, []error) {
	out := make(map[string]mastery.State, len(states))
	var warnings []error

	for id, st := range states {
		st, err := mastery.Sanitize(st, now)
		if err != nil {
			warnings = append(warnings, err)
		}
		if s, ok := g.Skill(id); ok {
			st, err = mastery.ApplyDecay(st, now, opts.rateFor(s), opts.DecayFloor)
			if err != nil {
				warnings = append(warnings, err)
			}
		}
		out[id] = st
	}

	mastered := recommend.MasteredSet(out)
	var unlocked []string
	for _, s := range g.Skills() {
		if !g.IsUnlockable(s.ID, mastered) {
			continue
		}
		st, ok := out[s.ID]
		if !ok {
			st = mastery.NewState(s.ID)
		}
		if st.Unlocked {
			continue
		}
		out[s.ID] = mastery.Unlock(st, now)
		unlocked = append(unlocked, s.ID)
	}
	return out, unlocked, warnings
}

// plan runs decay, unlock, recommendation and readiness over one learner's
// states. It is pure: identical inputs give identical outputs.
func plan(in planInput) planOutput {
	g := in.graph
	states, unlocked, warnings := refresh(g, in.states, in.now, in.opts)

	tracked := make([]mastery.State, 0, len(states))
	for _, s := range g.Skills() {
		if st, ok := states[s.ID]; ok {
			tracked = append(tracked, st)
		}
	}

	score := readiness.Compute(tracked, in.completions, in.signals, in.opts.Readiness)
	score.Categories = readiness.CategoryVector(g.Skills(), states)
	score.ComputedAt = in.now

	res := &Result{
		States:          tracked,
		NewlyUnlocked:   unlocked,
		Recommendations: recommend.Recommend(g, states, in.opts.Recommend),
		Readiness:       score,
		Warnings:        warnings,
		ComputedAt:      in.now,
	}

	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := g.TopoIndex(ids[i]), g.TopoIndex(ids[j])
		if ti != tj {
			return ti < tj
		}
		return ids[i] < ids[j]
	})

	var changed []mastery.State
	for _, id := range ids {
		next := states[id]
		prev, existed := in.prior[id]
		if !existed {
			prev = mastery.NewState(id)
		}
		res.Transitions = append(res.Transitions, mastery.Diff(prev, next, in.now)...)
		if !existed || in.dirty[id] || !sameState(prev, next) {
			changed = append(changed, next)
		}
	}

	return planOutput{result: res, states: states, changed: changed}
}
