// Package graphview projects the skill graph and one learner's state into
// the node/edge/cluster shape dashboards render.
package graphview

import (
	"time"

	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/skillgraph"
)

// Node is a skill as seen by one learner.
type Node struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	Category       skillgraph.Category `json:"category"`
	Difficulty     int                 `json:"difficulty"`
	EstimatedHours float64             `json:"estimated_hours"`
	ClusterID      string              `json:"cluster_id,omitempty"`
	Mastery        int                 `json:"mastery"`
	IsUnlocked     bool                `json:"is_unlocked"`
	LastPracticed  *time.Time          `json:"last_practiced,omitempty"`
	Status         mastery.Status      `json:"status"`
}

// Edge points from a prerequisite (Source) to the skill that needs it.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Cluster is a career-path grouping with the learner's progress through it.
type Cluster struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	CareerPath string   `json:"career_path,omitempty"`
	SkillIDs   []string `json:"skill_ids"`
	Mastered   int      `json:"mastered"`
	Progress   float64  `json:"progress"`
}

// View is the full projection.
type View struct {
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Clusters []Cluster `json:"clusters"`
}

// Project builds a View. Nodes come out in topological order and edges
// sorted by target then source. Skills missing from states are shown
// locked at level 0.
func Project(g *skillgraph.Graph, states map[string]mastery.State) View {
	v := View{
		Nodes:    make([]Node, 0, g.Len()),
		Edges:    []Edge{},
		Clusters: []Cluster{},
	}

	for _, s := range g.Skills() {
		st, ok := states[s.ID]
		if !ok {
			st = mastery.NewState(s.ID)
		}
		v.Nodes = append(v.Nodes, Node{
			ID:             s.ID,
			Name:           s.Name,
			Description:    s.Description,
			Category:       s.Category,
			Difficulty:     s.Difficulty,
			EstimatedHours: s.EstimatedHours,
			ClusterID:      g.ClusterOf(s.ID),
			Mastery:        st.Level,
			IsUnlocked:     st.Unlocked,
			LastPracticed:  st.LastPracticed,
			Status:         st.Status(),
		})
	}

	for _, e := range g.Edges() {
		v.Edges = append(v.Edges, Edge{Source: e.PrerequisiteID, Target: e.SkillID, Weight: e.Weight})
	}

	for _, cl := range g.Clusters() {
		c := Cluster{ID: cl.ID, Name: cl.Name, CareerPath: cl.CareerPath, SkillIDs: cl.SkillIDs}
		for _, id := range cl.SkillIDs {
			if states[id].IsMastered() {
				c.Mastered++
			}
		}
		if len(cl.SkillIDs) > 0 {
			c.Progress = float64(c.Mastered) / float64(len(cl.SkillIDs))
		}
		v.Clusters = append(v.Clusters, c)
	}
	return v
}
