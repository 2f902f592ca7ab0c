package skillgraph

import (
	"slices"
	"sort"
)

// Graph is a validated, immutable skill DAG with precomputed indices.
// It is safe for concurrent use.
type Graph struct {
	skills     []Skill // topological order
	byID       map[string]*Skill
	prereqs    map[string][]string
	dependents map[string][]string
	edges      []Edge
	roots      []Skill
	topoIndex  map[string]int
	clusters   []Cluster
	clusterOf  map[string]string
	byCategory map[Category][]Skill
}

// New validates the catalog and builds a Graph from it.
// A structurally invalid catalog yields an *IntegrityError.
func New(c Catalog) (*Graph, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	return buildGraph(c), nil
}

// MustNew is like New but panics on an invalid catalog. Intended for
// embedded catalogs and tests.
func MustNew(c Catalog) *Graph {
	g, err := New(c)
	if err != nil {
		panic(err)
	}
	return g
}

// buildGraph constructs the graph from a validated catalog.
// It builds all indices including topological order (Kahn's algorithm).
func buildGraph(c Catalog) *Graph {
	gr := &Graph{
		byID:       make(map[string]*Skill, len(c.Skills)),
		prereqs:    make(map[string][]string),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(c.Skills)),
		clusterOf:  make(map[string]string),
		byCategory: make(map[Category][]Skill),
	}

	skills := slices.Clone(c.Skills)
	byID := make(map[string]Skill, len(skills))
	for _, s := range skills {
		byID[s.ID] = s
	}

	for _, e := range c.Edges {
		if e.Weight == 0 {
			e.Weight = DefaultEdgeWeight
		}
		gr.edges = append(gr.edges, e)
		gr.prereqs[e.SkillID] = append(gr.prereqs[e.SkillID], e.PrerequisiteID)
		gr.dependents[e.PrerequisiteID] = append(gr.dependents[e.PrerequisiteID], e.SkillID)
	}
	for id := range gr.prereqs {
		sort.Strings(gr.prereqs[id])
	}
	for id := range gr.dependents {
		sort.Strings(gr.dependents[id])
	}
	sort.Slice(gr.edges, func(i, j int) bool {
		if gr.edges[i].SkillID != gr.edges[j].SkillID {
			return gr.edges[i].SkillID < gr.edges[j].SkillID
		}
		return gr.edges[i].PrerequisiteID < gr.edges[j].PrerequisiteID
	})

	// Topological sort (Kahn's algorithm)
	inDegree := make(map[string]int, len(skills))
	for _, s := range skills {
		inDegree[s.ID] = len(gr.prereqs[s.ID])
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort initial queue for deterministic ordering
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		gr.skills = append(gr.skills, byID[id])

		for _, depID := range gr.dependents[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	for i := range gr.skills {
		s := &gr.skills[i]
		gr.byID[s.ID] = s
		gr.topoIndex[s.ID] = i
		if len(gr.prereqs[s.ID]) == 0 {
			gr.roots = append(gr.roots, *s)
		}
		gr.byCategory[s.Category] = append(gr.byCategory[s.Category], *s)
	}

	for _, cl := range c.Clusters {
		cl.SkillIDs = slices.Clone(cl.SkillIDs)
		sort.Slice(cl.SkillIDs, func(i, j int) bool {
			return gr.topoIndex[cl.SkillIDs[i]] < gr.topoIndex[cl.SkillIDs[j]]
		})
		gr.clusters = append(gr.clusters, cl)
		for _, sid := range cl.SkillIDs {
			gr.clusterOf[sid] = cl.ID
		}
	}
	sort.Slice(gr.clusters, func(i, j int) bool { return gr.clusters[i].ID < gr.clusters[j].ID })

	return gr
}

// Len returns the number of skills in the graph.
func (g *Graph) Len() int {
	return len(g.skills)
}

// Skill returns the skill with the given ID.
func (g *Graph) Skill(id string) (Skill, bool) {
	s, ok := g.byID[id]
	if !ok {
		return Skill{}, false
	}
	return *s, true
}

// Has reports whether the graph contains a skill with the given ID.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Skills returns all skills in a valid topological order.
func (g *Graph) Skills() []Skill {
	return slices.Clone(g.skills)
}

// Edges returns all prerequisite edges, sorted by skill then prerequisite.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Clusters returns all clusters sorted by ID.
func (g *Graph) Clusters() []Cluster {
	out := make([]Cluster, len(g.clusters))
	for i, cl := range g.clusters {
		cl.SkillIDs = slices.Clone(cl.SkillIDs)
		out[i] = cl
	}
	return out
}

// ClusterOf returns the ID of the cluster a skill belongs to, or "".
func (g *Graph) ClusterOf(id string) string {
	return g.clusterOf[id]
}

// ByCategory returns all skills in a category, in topological order.
func (g *Graph) ByCategory(c Category) []Skill {
	return slices.Clone(g.byCategory[c])
}

// RootSkills returns all skills with no prerequisites.
func (g *Graph) RootSkills() []Skill {
	return slices.Clone(g.roots)
}

// Prerequisites returns the IDs of the direct prerequisites of a skill.
func (g *Graph) Prerequisites(id string) []string {
	return slices.Clone(g.prereqs[id])
}

// Dependents returns the IDs of skills that directly depend on the given skill.
func (g *Graph) Dependents(id string) []string {
	return slices.Clone(g.dependents[id])
}

// TopoIndex returns the position of a skill in topological order, or -1.
func (g *Graph) TopoIndex(id string) int {
	i, ok := g.topoIndex[id]
	if !ok {
		return -1
	}
	return i
}

// Catalog returns the catalog the graph was built from, with edge weights
// defaulted.
func (g *Graph) Catalog() Catalog {
	return Catalog{
		Skills:   g.Skills(),
		Edges:    g.Edges(),
		Clusters: g.Clusters(),
	}
}
