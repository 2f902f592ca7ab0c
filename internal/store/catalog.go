package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/skillforge/internal/skillgraph"
)

// catalogRepo implements CatalogRepo on the SQL driver.
type catalogRepo struct {
	drv *entsql.Driver
}

func (r *catalogRepo) LoadCatalog(ctx context.Context) (skillgraph.Catalog, error) {
	var c skillgraph.Catalog
	b := sqlite()

	err := query(ctx, r.drv,
		b.Select("id", "name", "description", "category", "difficulty", "estimated_hours", "decay_rate").
			From(b.Table(SkillsTable.Name)).
			OrderBy("position", "id"),
		func(rows *entsql.Rows) error {
			var s skillgraph.Skill
			var cat string
			if err := rows.Scan(&s.ID, &s.Name, &s.Description, &cat, &s.Difficulty, &s.EstimatedHours, &s.DecayRate); err != nil {
				return err
			}
			s.Category = skillgraph.Category(cat)
			c.Skills = append(c.Skills, s)
			return nil
		})
	if err != nil {
		return c, fmt.Errorf("query skills: %w", err)
	}

	err = query(ctx, r.drv,
		b.Select("skill_id", "prerequisite_id", "weight").
			From(b.Table(SkillEdgesTable.Name)).
			OrderBy("skill_id", "prerequisite_id"),
		func(rows *entsql.Rows) error {
			var e skillgraph.Edge
			if err := rows.Scan(&e.SkillID, &e.PrerequisiteID, &e.Weight); err != nil {
				return err
			}
			c.Edges = append(c.Edges, e)
			return nil
		})
	if err != nil {
		return c, fmt.Errorf("query skill edges: %w", err)
	}

	idx := make(map[string]int)
	err = query(ctx, r.drv,
		b.Select("id", "name", "career_path", "description").
			From(b.Table(SkillClustersTable.Name)).
			OrderBy("id"),
		func(rows *entsql.Rows) error {
			var cl skillgraph.Cluster
			if err := rows.Scan(&cl.ID, &cl.Name, &cl.CareerPath, &cl.Description); err != nil {
				return err
			}
			idx[cl.ID] = len(c.Clusters)
			c.Clusters = append(c.Clusters, cl)
			return nil
		})
	if err != nil {
		return c, fmt.Errorf("query skill clusters: %w", err)
	}

	err = query(ctx, r.drv,
		b.Select("cluster_id", "skill_id").
			From(b.Table(ClusterSkillsTable.Name)).
			OrderBy("cluster_id", "skill_id"),
		func(rows *entsql.Rows) error {
			var clusterID, skillID string
			if err := rows.Scan(&clusterID, &skillID); err != nil {
				return err
			}
			// Membership rows for a missing cluster surface as an
			// integrity error when the graph is built.
			i, ok := idx[clusterID]
			if !ok {
				idx[clusterID] = len(c.Clusters)
				c.Clusters = append(c.Clusters, skillgraph.Cluster{ID: clusterID})
				i = idx[clusterID]
			}
			c.Clusters[i].SkillIDs = append(c.Clusters[i].SkillIDs, skillID)
			return nil
		})
	if err != nil {
		return c, fmt.Errorf("query cluster skills: %w", err)
	}

	return c, nil
}

func (r *catalogRepo) ReplaceCatalog(ctx context.Context, c skillgraph.Catalog) error {
	return withTx(ctx, r.drv, func(tx dialect.Tx) error {
		b := sqlite()
		for _, t := range []string{ClusterSkillsTable.Name, SkillClustersTable.Name, SkillEdgesTable.Name, SkillsTable.Name} {
			if err := exec(ctx, tx, b.Delete(t)); err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}

		if len(c.Skills) > 0 {
			ins := b.Insert(SkillsTable.Name).
				Columns("id", "name", "description", "category", "difficulty", "estimated_hours", "decay_rate", "position")
			for i, s := range c.Skills {
				ins.Values(s.ID, s.Name, s.Description, string(s.Category), s.Difficulty, s.EstimatedHours, s.DecayRate, i)
			}
			if err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert skills: %w", err)
			}
		}

		if len(c.Edges) > 0 {
			ins := b.Insert(SkillEdgesTable.Name).Columns("skill_id", "prerequisite_id", "weight")
			for _, e := range c.Edges {
				w := e.Weight
				if w == 0 {
					w = skillgraph.DefaultEdgeWeight
				}
				ins.Values(e.SkillID, e.PrerequisiteID, w)
			}
			if err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert skill edges: %w", err)
			}
		}

		for _, cl := range c.Clusters {
			err := exec(ctx, tx, b.Insert(SkillClustersTable.Name).
				Columns("id", "name", "career_path", "description").
				Values(cl.ID, cl.Name, cl.CareerPath, cl.Description))
			if err != nil {
				return fmt.Errorf("insert cluster %s: %w", cl.ID, err)
			}
			if len(cl.SkillIDs) == 0 {
				continue
			}
			ins := b.Insert(ClusterSkillsTable.Name).Columns("cluster_id", "skill_id")
			for _, sid := range cl.SkillIDs {
				ins.Values(cl.ID, sid)
			}
			if err := exec(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert cluster %s members: %w", cl.ID, err)
			}
		}
		return nil
	})
}

func (r *catalogRepo) SkillCount(ctx context.Context) (int, error) {
	b := sqlite()
	var n int
	err := query(ctx, r.drv, b.Select(entsql.Count("*")).From(b.Table(SkillsTable.Name)), func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count skills: %w", err)
	}
	return n, nil
}
