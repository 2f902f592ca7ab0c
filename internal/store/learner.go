package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// learnerRepo implements LearnerRepo on the SQL driver.
type learnerRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *learnerRepo) EnsureLearner(ctx context.Context, userID string) (bool, error) {
	if _, err := r.GetLearner(ctx, userID); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	now := time.Now().UTC()
	err := exec(ctx, r.drv, sqlite().Insert(LearnersTable.Name).
		Columns("id", "created_at", "updated_at").
		Values(userID, now, now).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()))
	if err != nil {
		return false, fmt.Errorf("insert learner: %w", err)
	}
	return true, nil
}

func (r *learnerRepo) GetLearner(ctx context.Context, userID string) (*Learner, error) {
	b := sqlite()
	var l *Learner
	err := query(ctx, r.drv,
		b.Select("id", "created_at", "updated_at").
			From(b.Table(LearnersTable.Name)).
			Where(entsql.EQ("id", userID)),
		func(rows *entsql.Rows) error {
			l = &Learner{}
			return rows.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
		})
	if err != nil {
		return nil, fmt.Errorf("query learner: %w", err)
	}
	if l == nil {
		return nil, ErrNotFound
	}
	return l, nil
}

func (r *learnerRepo) ListLearners(ctx context.Context) ([]Learner, error) {
	b := sqlite()
	var out []Learner
	err := query(ctx, r.drv,
		b.Select("id", "created_at", "updated_at").
			From(b.Table(LearnersTable.Name)).
			OrderBy("id"),
		func(rows *entsql.Rows) error {
			var l Learner
			if err := rows.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
				return err
			}
			out = append(out, l)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	return out, nil
}

func (r *learnerRepo) SkillStates(ctx context.Context, userID string) ([]SkillStateRecord, error) {
	b := sqlite()
	var out []SkillStateRecord
	err := query(ctx, r.drv,
		b.Select("skill_id", "level", "baseline", "is_unlocked", "unlocked_at", "last_practiced", "mastered_at", "reinforcement_count", "updated_at").
			From(b.Table(UserSkillStatesTable.Name)).
			Where(entsql.EQ("user_id", userID)).
			OrderBy("skill_id"),
		func(rows *entsql.Rows) error {
			var s SkillStateRecord
			var unlockedAt, lastPracticed, masteredAt sql.NullTime
			if err := rows.Scan(&s.SkillID, &s.Level, &s.Baseline, &s.Unlocked, &unlockedAt, &lastPracticed, &masteredAt, &s.ReinforcementCount, &s.UpdatedAt); err != nil {
				return err
			}
			s.UnlockedAt = timePtr(unlockedAt)
			s.LastPracticed = timePtr(lastPracticed)
			s.MasteredAt = timePtr(masteredAt)
			out = append(out, s)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query skill states: %w", err)
	}
	return out, nil
}

func (r *learnerRepo) RecentCompletions(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	b := sqlite()
	sel := b.Select("completed_at").
		From(b.Table(LearningActivitiesTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("completed_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	var out []time.Time
	err := query(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	return out, nil
}

func (r *learnerRepo) Activities(ctx context.Context, userID string, limit int) ([]ActivityRecord, error) {
	b := sqlite()
	sel := b.Select("id", "user_id", "title", "kind", "skill_ids", "performance", "completed_at").
		From(b.Table(LearningActivitiesTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("completed_at"), "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	var out []ActivityRecord
	err := query(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		var a ActivityRecord
		var skillIDs []byte
		var perf sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Kind, &skillIDs, &perf, &a.CompletedAt); err != nil {
			return err
		}
		if err := json.Unmarshal(skillIDs, &a.SkillIDs); err != nil {
			return fmt.Errorf("decode skill ids of activity %s: %w", a.ID, err)
		}
		if perf.Valid {
			a.Performance = &perf.Float64
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	return out, nil
}

func (r *learnerRepo) Signals(ctx context.Context, userID string) (SignalsRecord, error) {
	b := sqlite()
	var sig SignalsRecord
	err := query(ctx, r.drv,
		b.Select("goal_progress", "interview_score", "updated_at").
			From(b.Table(LearnerSignalsTable.Name)).
			Where(entsql.EQ("user_id", userID)),
		func(rows *entsql.Rows) error {
			var goal, interview sql.NullInt64
			if err := rows.Scan(&goal, &interview, &sig.UpdatedAt); err != nil {
				return err
			}
			sig.GoalProgress = intPtr(goal)
			sig.InterviewScore = intPtr(interview)
			return nil
		})
	if err != nil {
		return sig, fmt.Errorf("query signals: %w", err)
	}
	return sig, nil
}

func (r *learnerRepo) SetSignals(ctx context.Context, userID string, sig SignalsRecord) error {
	updated := sig.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	err := exec(ctx, r.drv, sqlite().Insert(LearnerSignalsTable.Name).
		Columns("user_id", "goal_progress", "interview_score", "updated_at").
		Values(userID, nullInt(sig.GoalProgress), nullInt(sig.InterviewScore), updated.UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()))
	if err != nil {
		return fmt.Errorf("upsert signals: %w", err)
	}
	return nil
}

func (r *learnerRepo) ActiveRecommendations(ctx context.Context, userID string) ([]RecommendationRecord, error) {
	b := sqlite()
	var out []RecommendationRecord
	err := query(ctx, r.drv,
		b.Select("skill_id", "score", "kind", "reason", "is_active", "rank", "updated_at").
			From(b.Table(RecommendationsTable.Name)).
			Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("is_active", true))).
			OrderBy("rank", "skill_id"),
		func(rows *entsql.Rows) error {
			var rec RecommendationRecord
			if err := rows.Scan(&rec.SkillID, &rec.Score, &rec.Kind, &rec.Reason, &rec.Active, &rec.Rank, &rec.UpdatedAt); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	return out, nil
}

func (r *learnerRepo) Readiness(ctx context.Context, userID string) (*ReadinessRecord, error) {
	b := sqlite()
	var rec *ReadinessRecord
	err := query(ctx, r.drv,
		b.Select("placement_readiness", "skills_mastered", "skills_tracked", "average_mastery", "coverage",
			"consistency_score", "goal_progress", "interview_score", "categories", "computed_at").
			From(b.Table(ReadinessScoresTable.Name)).
			Where(entsql.EQ("user_id", userID)),
		func(rows *entsql.Rows) error {
			rec = &ReadinessRecord{}
			var categories []byte
			if err := rows.Scan(&rec.PlacementReadiness, &rec.SkillsMastered, &rec.SkillsTracked, &rec.AverageMastery,
				&rec.Coverage, &rec.ConsistencyScore, &rec.GoalProgress, &rec.InterviewScore, &categories, &rec.ComputedAt); err != nil {
				return err
			}
			if len(categories) > 0 {
				if err := json.Unmarshal(categories, &rec.Categories); err != nil {
					return fmt.Errorf("decode categories: %w", err)
				}
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query readiness: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *learnerRepo) SkillEvents(ctx context.Context, userID string, opts QueryOpts) ([]SkillEventRecord, error) {
	return skillEvents(ctx, r.drv, userID, opts)
}

func (r *learnerRepo) SaveLearner(ctx context.Context, w LearnerWrite) error {
	return withTx(ctx, r.drv, func(tx dialect.Tx) error {
		now := time.Now().UTC()
		b := sqlite()

		if err := exec(ctx, tx, b.Update(LearnersTable.Name).
			Set("updated_at", now).
			Where(entsql.EQ("id", w.UserID))); err != nil {
			return fmt.Errorf("touch learner: %w", err)
		}

		if len(w.States) > 0 {
			ins := b.Insert(UserSkillStatesTable.Name).
				Columns("user_id", "skill_id", "level", "baseline", "is_unlocked", "unlocked_at",
					"last_practiced", "mastered_at", "reinforcement_count", "updated_at")
			for _, s := range w.States {
				ins.Values(w.UserID, s.SkillID, s.Level, s.Baseline, s.Unlocked, nullTime(s.UnlockedAt),
					nullTime(s.LastPracticed), nullTime(s.MasteredAt), s.ReinforcementCount, now)
			}
			ins.OnConflict(entsql.ConflictColumns("user_id", "skill_id"), entsql.ResolveWithNewValues())
			if err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("upsert skill states: %w", err)
			}
		}

		if w.Activity != nil {
			if err := insertActivity(ctx, tx, *w.Activity); err != nil {
				return err
			}
		}

		if w.Recommendations != nil {
			if err := exec(ctx, tx, b.Update(RecommendationsTable.Name).
				Set("is_active", false).
				Where(entsql.EQ("user_id", w.UserID))); err != nil {
				return fmt.Errorf("deactivate recommendations: %w", err)
			}
			if len(w.Recommendations) > 0 {
				ins := b.Insert(RecommendationsTable.Name).
					Columns("user_id", "skill_id", "score", "kind", "reason", "is_active", "rank", "updated_at")
				for i, rec := range w.Recommendations {
					ins.Values(w.UserID, rec.SkillID, rec.Score, rec.Kind, rec.Reason, true, i+1, now)
				}
				ins.OnConflict(entsql.ConflictColumns("user_id", "skill_id"), entsql.ResolveWithNewValues())
				if err := exec(ctx, tx, ins); err != nil {
					return fmt.Errorf("upsert recommendations: %w", err)
				}
			}
		}

		if w.Readiness != nil {
			rd := w.Readiness
			var categories []byte
			if rd.Categories != nil {
				var err error
				if categories, err = json.Marshal(rd.Categories); err != nil {
					return fmt.Errorf("encode categories: %w", err)
				}
			}
			computed := rd.ComputedAt
			if computed.IsZero() {
				computed = now
			}
			err := exec(ctx, tx, b.Insert(ReadinessScoresTable.Name).
				Columns("user_id", "placement_readiness", "skills_mastered", "skills_tracked", "average_mastery",
					"coverage", "consistency_score", "goal_progress", "interview_score", "categories", "computed_at").
				Values(w.UserID, rd.PlacementReadiness, rd.SkillsMastered, rd.SkillsTracked, rd.AverageMastery,
					rd.Coverage, rd.ConsistencyScore, rd.GoalProgress, rd.InterviewScore, categories, computed.UTC()).
				OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()))
			if err != nil {
				return fmt.Errorf("upsert readiness: %w", err)
			}
		}

		if err := r.seq.appendEvents(ctx, tx, w.UserID, w.Events); err != nil {
			return err
		}
		return nil
	})
}

func insertActivity(ctx context.Context, q dialect.ExecQuerier, a ActivityRecord) error {
	skillIDs, err := json.Marshal(a.SkillIDs)
	if err != nil {
		return fmt.Errorf("encode skill ids: %w", err)
	}
	var perf any
	if a.Performance != nil {
		perf = *a.Performance
	}
	err = exec(ctx, q, sqlite().Insert(LearningActivitiesTable.Name).
		Columns("id", "user_id", "title", "kind", "skill_ids", "performance", "completed_at").
		Values(a.ID, a.UserID, a.Title, a.Kind, skillIDs, perf, a.CompletedAt.UTC()))
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
