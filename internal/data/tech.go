package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tech is one advance.
type Tech struct {
	Index int      `yaml:"-"`
	Name  string   `yaml:"name"`
	Reqs  []string `yaml:"reqs"`

	reqs []int
}

// ReqIndices returns the resolved prerequisite indices.
func (t *Tech) ReqIndices() []int { return t.reqs }

type techListFile struct {
	Techs []Tech `yaml:"techs"`
}

// TechTable holds techs in ruleset order.
type TechTable struct {
	techs  []*Tech
	byName map[string]*Tech
}

// LoadTechTable loads techs.yaml and resolves prerequisites.
func LoadTechTable(path string) (*TechTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read techs: %w", err)
	}
	var f techListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse techs: %w", err)
	}
	t := &TechTable{byName: make(map[string]*Tech, len(f.Techs))}
	for i := range f.Techs {
		tech := &f.Techs[i]
		tech.Index = i
		t.techs = append(t.techs, tech)
		t.byName[tech.Name] = tech
	}
	for _, tech := range t.techs {
		for _, name := range tech.Reqs {
			req, ok := t.byName[name]
			if !ok {
				return nil, fmt.Errorf("tech %q: unknown prerequisite %q", tech.Name, name)
			}
			tech.reqs = append(tech.reqs, req.Index)
		}
	}
	return t, nil
}

// Get returns the tech at index i, or nil.
func (t *TechTable) Get(i int) *Tech {
	if i < 0 || i >= len(t.techs) {
		return nil
	}
	return t.techs[i]
}

// ByName returns the named tech, or nil.
func (t *TechTable) ByName(name string) *Tech {
	return t.byName[name]
}

// Count returns the number of techs.
func (t *TechTable) Count() int {
	return len(t.techs)
}

// Index resolves a tech name; the empty name resolves to -1.
func (t *TechTable) Index(name string) (int, error) {
	if name == "" {
		return -1, nil
	}
	tech, ok := t.byName[name]
	if !ok {
		return 0, fmt.Errorf("unknown tech %q", name)
	}
	return tech.Index, nil
}
