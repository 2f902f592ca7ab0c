package skillgraph

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/default.yaml
var defaultCatalogYAML []byte

// catalogFile is the on-disk YAML layout. Prerequisites can be listed
// inline on a skill ("requires") or as explicit weighted edges.
type catalogFile struct {
	Skills   []skillEntry `yaml:"skills"`
	Edges    []Edge       `yaml:"edges,omitempty"`
	Clusters []Cluster    `yaml:"clusters,omitempty"`
}

type skillEntry struct {
	Skill    `yaml:",inline"`
	Requires []string `yaml:"requires,omitempty"`
}

// ParseCatalog decodes a YAML catalog. It does not validate the result;
// use New or Validate for that.
func ParseCatalog(data []byte) (Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	c := Catalog{Clusters: f.Clusters}
	for _, se := range f.Skills {
		c.Skills = append(c.Skills, se.Skill)
		for _, req := range se.Requires {
			c.Edges = append(c.Edges, Edge{SkillID: se.ID, PrerequisiteID: req, Weight: DefaultEdgeWeight})
		}
	}
	for _, e := range f.Edges {
		if e.Weight == 0 {
			e.Weight = DefaultEdgeWeight
		}
		c.Edges = append(c.Edges, e)
	}
	return c, nil
}

// LoadCatalogFile reads and decodes a YAML catalog from disk.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// MarshalCatalog encodes a catalog in the same YAML layout ParseCatalog
// reads. Default-weight edges are folded into "requires".
func MarshalCatalog(c Catalog) ([]byte, error) {
	inline := make(map[string][]string)
	var f catalogFile
	for _, e := range c.Edges {
		if e.Weight == 0 || e.Weight == DefaultEdgeWeight {
			inline[e.SkillID] = append(inline[e.SkillID], e.PrerequisiteID)
			continue
		}
		f.Edges = append(f.Edges, e)
	}
	for _, s := range c.Skills {
		f.Skills = append(f.Skills, skillEntry{Skill: s, Requires: inline[s.ID]})
	}
	f.Clusters = c.Clusters

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultCatalog returns the built-in catalog shipped with the binary.
// It is used to seed empty databases.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}
