package skillgraph

import (
	"sort"
	"strings"
)

// Validate checks a catalog for structural problems and returns an
// *IntegrityError describing all of them, or nil if the catalog is valid.
func Validate(c Catalog) error {
	ierr := &IntegrityError{}

	idSet := make(map[string]bool, len(c.Skills))

	// Check skill fields and duplicate IDs
	for _, s := range c.Skills {
		if strings.TrimSpace(s.ID) == "" {
			ierr.add("skill with empty ID (name %q)", s.Name)
			continue
		}
		if idSet[s.ID] {
			ierr.add("duplicate skill ID: %q", s.ID)
		}
		idSet[s.ID] = true

		if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
			ierr.add("skill %q: difficulty must be in [%d, %d], got %d", s.ID, MinDifficulty, MaxDifficulty, s.Difficulty)
		}
		if s.EstimatedHours <= 0 {
			ierr.add("skill %q: estimated hours must be > 0, got %g", s.ID, s.EstimatedHours)
		}
		if s.DecayRate < 0 {
			ierr.add("skill %q: decay rate must be >= 0, got %g", s.ID, s.DecayRate)
		}
	}

	// Check edges: dangling endpoints, self-loops, duplicates, weights
	type pair struct{ skill, prereq string }
	seenEdges := make(map[pair]bool, len(c.Edges))
	prereqs := make(map[string][]string)
	for _, e := range c.Edges {
		if !idSet[e.SkillID] {
			ierr.add("edge references nonexistent skill %q", e.SkillID)
		}
		if !idSet[e.PrerequisiteID] {
			ierr.add("skill %q references nonexistent prerequisite %q", e.SkillID, e.PrerequisiteID)
		}
		if e.SkillID == e.PrerequisiteID {
			ierr.add("skill %q lists itself as a prerequisite", e.SkillID)
		}
		if e.Weight < 0 {
			ierr.add("edge %q -> %q: weight must not be negative, got %g", e.PrerequisiteID, e.SkillID, e.Weight)
		}
		p := pair{e.SkillID, e.PrerequisiteID}
		if seenEdges[p] {
			ierr.add("duplicate edge %q -> %q", e.PrerequisiteID, e.SkillID)
			continue
		}
		seenEdges[p] = true
		if idSet[e.SkillID] && idSet[e.PrerequisiteID] {
			prereqs[e.SkillID] = append(prereqs[e.SkillID], e.PrerequisiteID)
		}
	}

	if cycle := findCycleNodes(idSet, prereqs); len(cycle) > 0 {
		ierr.CycleSkills = cycle
		ierr.add("cycle detected involving skills: %s", strings.Join(cycle, ", "))
	}

	// Check at least one root
	if len(idSet) > 0 {
		hasRoot := false
		for id := range idSet {
			if len(prereqs[id]) == 0 {
				hasRoot = true
				break
			}
		}
		if !hasRoot {
			ierr.add("no root skills found (at least one skill must have no prerequisites)")
		}
	}

	// Check clusters
	clusterIDs := make(map[string]bool, len(c.Clusters))
	memberOf := make(map[string]string)
	for _, cl := range c.Clusters {
		if strings.TrimSpace(cl.ID) == "" {
			ierr.add("cluster with empty ID (name %q)", cl.Name)
			continue
		}
		if clusterIDs[cl.ID] {
			ierr.add("duplicate cluster ID: %q", cl.ID)
		}
		clusterIDs[cl.ID] = true
		for _, sid := range cl.SkillIDs {
			if !idSet[sid] {
				ierr.add("cluster %q references nonexistent skill %q", cl.ID, sid)
				continue
			}
			if other, ok := memberOf[sid]; ok && other != cl.ID {
				ierr.add("skill %q belongs to clusters %q and %q", sid, other, cl.ID)
				continue
			}
			memberOf[sid] = cl.ID
		}
	}

	return ierr.orNil()
}

// findCycleNodes runs Kahn's algorithm over the prerequisite relation and
// returns the sorted IDs that could never be reached from a root, i.e. the
// skills on a cycle or downstream of one.
func findCycleNodes(ids map[string]bool, prereqs map[string][]string) []string {
	inDegree := make(map[string]int, len(ids))
	adjList := make(map[string][]string)
	for id := range ids {
		inDegree[id] = len(prereqs[id])
		for _, p := range prereqs[id] {
			adjList[p] = append(adjList[p], id)
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if visited == len(ids) {
		return nil
	}
	var cycleNodes []string
	for id, deg := range inDegree {
		if deg > 0 {
			cycleNodes = append(cycleNodes, id)
		}
	}
	sort.Strings(cycleNodes)
	return cycleNodes
}
