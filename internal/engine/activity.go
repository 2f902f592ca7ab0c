package engine

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/skillgraph"
	"github.com/abhisek/skillforge/internal/store"
)

const maxUserIDLen = 128

// Activity is a completed piece of learning that practiced one or more
// skills.
type Activity struct {
	// ID is generated when empty.
	ID       string
	UserID   string
	Title    string
	Kind     string
	SkillIDs []string

	// CompletedAt defaults to now. Completions in the future are clamped
	// to now.
	CompletedAt time.Time

	// Performance in [0, 1] scales the reinforcement step; nil means no
	// signal.
	Performance *float64
}

// RecordActivity reinforces every skill the activity practiced and then
// recomputes the learner, all under the learner's lock. Unknown skills are
// a *NotFoundError and locked skills a *mastery.InvalidStateError; in both
// cases nothing is written.
func (s *Service) RecordActivity(ctx context.Context, a Activity) (*Result, error) {
	userID, err := normalizeUserID(a.UserID)
	if err != nil {
		return nil, err
	}
	a.UserID = userID
	if len(a.SkillIDs) == 0 {
		return nil, &ValidationError{Field: "skill_ids", Reason: "at least one skill is required"}
	}
	if p := a.Performance; p != nil && (math.IsNaN(*p) || *p < 0 || *p > 1) {
		return nil, &ValidationError{Field: "performance", Reason: "must be between 0 and 1"}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.SkillIDs = lo.Uniq(a.SkillIDs)

	now := s.now()
	if a.CompletedAt.IsZero() {
		a.CompletedAt = now
	}
	if a.CompletedAt.After(now) {
		s.log.Warn("activity completion in the future, clamping to now", "user_id", userID, "activity", a.ID)
		a.CompletedAt = now
	}

	return s.locked(ctx, userID, func(g *skillgraph.Graph, ls *learnerState) error {
		for _, id := range a.SkillIDs {
			if !g.Has(id) {
				return &NotFoundError{Kind: "skill", ID: id}
			}
		}

		// Practiced rows are sanitized here since the step overwrites them
		// before plan can report what was clamped.
		for _, id := range a.SkillIDs {
			st, ok := ls.states[id]
			if !ok {
				continue
			}
			clean, err := mastery.Sanitize(st, a.CompletedAt)
			if err != nil {
				ls.warnings = append(ls.warnings, err)
			}
			ls.states[id] = clean
		}

		// Bring states up to the completion time so the step lands on
		// the decayed level and freshly reachable skills are unlocked.
		// Untouched rows keep their stored form and plan reports them.
		refreshed, _, _ := refresh(g, ls.states, a.CompletedAt, s.opts)
		for _, id := range a.SkillIDs {
			st, ok := refreshed[id]
			if !ok {
				st = mastery.NewState(id)
			}
			at := a.CompletedAt
			if st.LastPracticed != nil && st.LastPracticed.After(at) {
				at = *st.LastPracticed
			}
			next, err := mastery.Reinforce(st, at, a.Performance)
			if err != nil {
				return err
			}
			ls.states[id] = next
		}
		// Skills the step did not touch keep their stored form; plan
		// decays and unlocks them as of now.
		for id, st := range refreshed {
			if _, ok := ls.states[id]; !ok {
				ls.states[id] = st
			}
		}

		ls.activity = &store.ActivityRecord{
			ID:          a.ID,
			UserID:      userID,
			Title:       a.Title,
			Kind:        a.Kind,
			SkillIDs:    a.SkillIDs,
			Performance: a.Performance,
			CompletedAt: a.CompletedAt,
		}
		return nil
	})
}

// normalizeUserID trims the id and rejects empty, overlong, or
// whitespace-containing ids. UUIDs are rewritten in canonical form.
func normalizeUserID(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", &ValidationError{Field: "user id", Reason: "must not be empty"}
	case len(id) > maxUserIDLen:
		return "", &ValidationError{Field: "user id", Reason: "too long"}
	case strings.IndexFunc(id, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0:
		return "", &ValidationError{Field: "user id", Reason: "must not contain whitespace"}
	}
	if u, err := uuid.Parse(id); err == nil {
		return u.String(), nil
	}
	return id, nil
}
