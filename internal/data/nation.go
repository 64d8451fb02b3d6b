package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Traits steer AI personality. Values are 0-100.
type Traits struct {
	Expansionist int `yaml:"expansionist"`
	Aggressive   int `yaml:"aggressive"`
	Builder      int `yaml:"builder"`
}

// Nation is a playable (or barbarian) nation.
type Nation struct {
	Index     int      `yaml:"-"`
	Name      string   `yaml:"name"`
	Adjective string   `yaml:"adjective"`
	Leader    string   `yaml:"leader"`
	Barbarian bool     `yaml:"barbarian"`
	CityNames []string `yaml:"city_names"`
	Traits    Traits   `yaml:"traits"`
}

type nationListFile struct {
	Nations []Nation `yaml:"nations"`
}

// NationTable holds nations in ruleset order.
type NationTable struct {
	nations []*Nation
	byName  map[string]*Nation
}

// LoadNationTable loads nations.yaml.
func LoadNationTable(path string) (*NationTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nations: %w", err)
	}
	var f nationListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse nations: %w", err)
	}
	t := &NationTable{byName: make(map[string]*Nation, len(f.Nations))}
	for i := range f.Nations {
		n := &f.Nations[i]
		n.Index = i
		t.nations = append(t.nations, n)
		t.byName[n.Name] = n
	}
	return t, nil
}

// Get returns the nation at index i, or nil.
func (t *NationTable) Get(i int) *Nation {
	if i < 0 || i >= len(t.nations) {
		return nil
	}
	return t.nations[i]
}

// ByName returns the named nation, or nil.
func (t *NationTable) ByName(name string) *Nation {
	return t.byName[name]
}

// Count returns the number of nations.
func (t *NationTable) Count() int {
	return len(t.nations)
}

// Barbarian returns the first barbarian nation, or nil.
func (t *NationTable) Barbarian() *Nation {
	for _, n := range t.nations {
		if n.Barbarian {
			return n
		}
	}
	return nil
}
