package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global, monotonically increasing sequence
// numbers of the skill event log. Events are written inside the same
// transaction as the state they describe, so reservation runs on the
// caller's transaction: a rolled-back recompute gives its numbers back.
type sequenceCounter struct {
	mu sync.Mutex
}

// newSequenceCounter ensures the single counter row exists.
func newSequenceCounter(ctx context.Context, q dialect.ExecQuerier) (*sequenceCounter, error) {
	err := exec(ctx, q, sqlite().Insert(GlobalSequenceTable.Name).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()))
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{}, nil
}

// reserve atomically reserves n consecutive sequence numbers and returns
// the first.
func (sc *sequenceCounter) reserve(ctx context.Context, q dialect.ExecQuerier, n int) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var first int64
	stmt := `UPDATE global_sequence SET next_val = next_val + ? WHERE id = 1 RETURNING next_val - ?`
	var rows entsql.Rows
	if err := q.Query(ctx, stmt, []any{n, n}, &rows); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("next sequence: %w", err)
		}
		return 0, fmt.Errorf("next sequence: counter row missing")
	}
	if err := rows.Scan(&first); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return first, nil
}

// appendEvents writes events with consecutive sequence numbers.
func (sc *sequenceCounter) appendEvents(ctx context.Context, q dialect.ExecQuerier, userID string, events []SkillEventRecord) error {
	if len(events) == 0 {
		return nil
	}
	first, err := sc.reserve(ctx, q, len(events))
	if err != nil {
		return err
	}

	ins := sqlite().Insert(SkillEventsTable.Name).
		Columns("sequence", "timestamp", "user_id", "skill_id", "kind", "from_level", "to_level")
	for i, e := range events {
		ins.Values(first+int64(i), e.Timestamp.UTC(), userID, e.SkillID, e.Kind, e.FromLevel, e.ToLevel)
	}
	if err := exec(ctx, q, ins); err != nil {
		return fmt.Errorf("insert skill events: %w", err)
	}
	return nil
}

// skillEvents returns a learner's events filtered by opts, oldest first.
func skillEvents(ctx context.Context, q dialect.ExecQuerier, userID string, opts QueryOpts) ([]SkillEventRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.SkillID != "" {
		preds = append(preds, entsql.EQ("skill_id", opts.SkillID))
	}

	b := sqlite()
	sel := b.Select("sequence", "timestamp", "user_id", "skill_id", "kind", "from_level", "to_level").
		From(b.Table(SkillEventsTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy("sequence")
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var out []SkillEventRecord
	err := query(ctx, q, sel, func(rows *entsql.Rows) error {
		var e SkillEventRecord
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.UserID, &e.SkillID, &e.Kind, &e.FromLevel, &e.ToLevel); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query skill events: %w", err)
	}
	return out, nil
}
