package skillgraph

// IsUnlockable returns true if all prerequisites for the given skill are in
// the mastered set. Skills without prerequisites are always unlockable.
func (g *Graph) IsUnlockable(id string, mastered map[string]bool) bool {
	if !g.Has(id) {
		return false
	}
	for _, prereqID := range g.prereqs[id] {
		if !mastered[prereqID] {
			return false
		}
	}
	return true
}

// Unlockable returns the set of skills whose prerequisites are all mastered.
// The result includes every root skill. It says nothing about skills that
// are already unlocked; callers merge it with prior unlock state.
func (g *Graph) Unlockable(mastered map[string]bool) map[string]bool {
	result := make(map[string]bool)
	for _, s := range g.skills {
		if g.IsUnlockable(s.ID, mastered) {
			result[s.ID] = true
		}
	}
	return result
}

// PrerequisiteProgress returns how many of a skill's direct prerequisites
// are mastered, and how many it has in total.
func (g *Graph) PrerequisiteProgress(id string, mastered map[string]bool) (satisfied, total int) {
	prereqs := g.prereqs[id]
	for _, p := range prereqs {
		if mastered[p] {
			satisfied++
		}
	}
	return satisfied, len(prereqs)
}

// BlockedSkills returns all skills that have at least one unmastered
// prerequisite, in topological order.
func (g *Graph) BlockedSkills(mastered map[string]bool) []Skill {
	var result []Skill
	for _, s := range g.skills {
		if !g.IsUnlockable(s.ID, mastered) {
			result = append(result, s)
		}
	}
	return result
}

// ComputeUnlocks validates skills and edges as a catalog and returns the
// IDs of every skill whose prerequisites are all in mastered. A cycle or a
// dangling reference yields an *IntegrityError and no unlocks.
func ComputeUnlocks(mastered map[string]bool, skills []Skill, edges []Edge) (map[string]bool, error) {
	g, err := New(Catalog{Skills: skills, Edges: edges})
	if err != nil {
		return nil, err
	}
	return g.Unlockable(mastered), nil
}
