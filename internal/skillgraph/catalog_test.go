package skillgraph

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	g, err := New(DefaultCatalog())
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	if g.Len() != 25 {
		t.Errorf("got %d skills, want 25", g.Len())
	}
	if n := len(g.RootSkills()); n != 5 {
		t.Errorf("got %d roots, want 5", n)
	}
	if n := len(g.Clusters()); n != 5 {
		t.Errorf("got %d clusters, want 5", n)
	}
	for _, e := range g.Edges() {
		if e.SkillID == "go-services" && e.PrerequisiteID == "data-structures" && e.Weight != 2 {
			t.Errorf("weighted edge lost: %+v", e)
		}
	}
}

func TestParseCatalog_RequiresShorthand(t *testing.T) {
	data := []byte(`
skills:
  - id: a
    name: A
    category: Programming
    difficulty: 1
    estimated_hours: 2
  - id: b
    name: B
    category: Backend
    difficulty: 3
    estimated_hours: 4
    requires: [a]
edges:
  - skill: b
    requires: c
clusters:
  - id: x
    name: X
    skills: [a, b]
`)
	c, err := ParseCatalog(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Skills) != 2 || len(c.Edges) != 2 || len(c.Clusters) != 1 {
		t.Fatalf("got %d skills, %d edges, %d clusters", len(c.Skills), len(c.Edges), len(c.Clusters))
	}
	if c.Edges[0].SkillID != "b" || c.Edges[0].PrerequisiteID != "a" || c.Edges[0].Weight != DefaultEdgeWeight {
		t.Errorf("shorthand edge = %+v", c.Edges[0])
	}
	if c.Edges[1].Weight != DefaultEdgeWeight {
		t.Errorf("explicit edge weight = %g, want default", c.Edges[1].Weight)
	}
	// "c" is dangling; parsing does not validate.
	if err := Validate(c); err == nil {
		t.Error("expected validation error for dangling edge")
	}
}

func TestParseCatalog_UnknownField(t *testing.T) {
	_, err := ParseCatalog([]byte("skills:\n  - id: a\n    grade: 3\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestMarshalCatalog_RoundTrip(t *testing.T) {
	orig := MustNew(DefaultCatalog())
	data, err := MarshalCatalog(orig.Catalog())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	g, err := New(c)
	if err != nil {
		t.Fatalf("reloaded catalog invalid: %v", err)
	}
	if g.Len() != orig.Len() || len(g.Edges()) != len(orig.Edges()) {
		t.Errorf("round trip changed graph: %d/%d skills, %d/%d edges",
			g.Len(), orig.Len(), len(g.Edges()), len(orig.Edges()))
	}
}

func TestLoadCatalogFile_Missing(t *testing.T) {
	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
