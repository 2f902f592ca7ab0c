package skillgraph

import (
	"errors"
	"testing"
)

// chain builds A -> B -> C where B requires A and C requires B.
func chain() *Graph {
	return MustNew(Catalog{
		Skills: []Skill{skill("A"), skill("B"), skill("C")},
		Edges: []Edge{
			{SkillID: "B", PrerequisiteID: "A"},
			{SkillID: "C", PrerequisiteID: "B"},
		},
	})
}

func TestUnlockable(t *testing.T) {
	g := chain()
	tests := []struct {
		name     string
		mastered map[string]bool
		want     []string
	}{
		{"nothing mastered", nil, []string{"A"}},
		{"root mastered", map[string]bool{"A": true}, []string{"A", "B"}},
		{"all mastered", map[string]bool{"A": true, "B": true, "C": true}, []string{"A", "B", "C"}},
		{"gap in chain", map[string]bool{"B": true}, []string{"A", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Unlockable(tt.mastered)
			if len(got) != len(tt.want) {
				t.Fatalf("Unlockable = %v, want %v", got, tt.want)
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("expected %q to be unlockable", id)
				}
			}
		})
	}
}

func TestIsUnlockable_UnknownSkill(t *testing.T) {
	if chain().IsUnlockable("nope", nil) {
		t.Error("unknown skill should not be unlockable")
	}
}

func TestUnlockable_EveryPrerequisiteMastered(t *testing.T) {
	g := MustNew(DefaultCatalog())
	mastered := map[string]bool{"prog-basics": true, "javascript": true, "http-apis": true}
	for id := range g.Unlockable(mastered) {
		for _, p := range g.Prerequisites(id) {
			if !mastered[p] {
				t.Errorf("%q unlocked but prerequisite %q not mastered", id, p)
			}
		}
	}
}

func TestPrerequisiteProgress(t *testing.T) {
	g := MustNew(DefaultCatalog())
	sat, total := g.PrerequisiteProgress("system-design", map[string]bool{"algorithms": true, "http-apis": true})
	if sat != 2 || total != 3 {
		t.Errorf("PrerequisiteProgress = %d/%d, want 2/3", sat, total)
	}
	sat, total = g.PrerequisiteProgress("sql", nil)
	if sat != 0 || total != 0 {
		t.Errorf("root PrerequisiteProgress = %d/%d, want 0/0", sat, total)
	}
}

func TestBlockedSkills(t *testing.T) {
	blocked := chain().BlockedSkills(map[string]bool{"A": true})
	if len(blocked) != 1 || blocked[0].ID != "C" {
		t.Errorf("BlockedSkills = %v, want [C]", blocked)
	}
}

func TestComputeUnlocks_RejectsCycle(t *testing.T) {
	skills := []Skill{skill("root"), skill("a"), skill("b")}
	edges := []Edge{
		{SkillID: "a", PrerequisiteID: "b"},
		{SkillID: "b", PrerequisiteID: "a"},
	}
	got, err := ComputeUnlocks(map[string]bool{"root": true}, skills, edges)
	var ierr *IntegrityError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *IntegrityError, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no unlocks, got %v", got)
	}
}

func TestComputeUnlocks(t *testing.T) {
	got, err := ComputeUnlocks(map[string]bool{"A": true},
		[]Skill{skill("A"), skill("B")},
		[]Edge{{SkillID: "B", PrerequisiteID: "A"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got["A"] || !got["B"] {
		t.Errorf("ComputeUnlocks = %v, want A and B", got)
	}
}
