package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Building genus values.
const (
	GenusImprovement = "improvement"
	GenusSmallWonder = "small_wonder"
)

// BuildingEffects are the city effects of having a building.
type BuildingEffects struct {
	Content      int  `yaml:"content"`       // unhappy citizens made content
	GrowthKeep   int  `yaml:"growth_keep"`   // percent of food kept on growth
	VeteranLand  bool `yaml:"veteran_land"`  // new land units start veteran
	DefenseBonus int  `yaml:"defense_bonus"` // percent, land attackers only
	SciencePct   int  `yaml:"science_pct"`
	TaxPct       int  `yaml:"tax_pct"`
	ShieldPct    int  `yaml:"shield_pct"`
	SizeCap      int  `yaml:"size_cap"` // raises the size limit to this value
	Capital      bool `yaml:"capital"`
}

// Building is a city improvement.
type Building struct {
	Index    int             `yaml:"-"`
	Name     string          `yaml:"name"`
	Genus    string          `yaml:"genus"`
	Cost     int             `yaml:"cost"`
	Upkeep   int             `yaml:"upkeep"`
	TechReq  string          `yaml:"tech_req"`
	Requires string          `yaml:"requires"` // another building in the same city
	Coastal  bool            `yaml:"coastal"`
	Effects  BuildingEffects `yaml:"effects"`

	Tech     int `yaml:"-"` // -1 when no tech is required
	Required int `yaml:"-"` // -1 when no building is required
}

type buildingListFile struct {
	Buildings []Building `yaml:"buildings"`
}

// BuildingTable holds buildings in ruleset order.
type BuildingTable struct {
	buildings []*Building
	byName    map[string]*Building
}

// LoadBuildingTable loads buildings.yaml.
func LoadBuildingTable(path string) (*BuildingTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read buildings: %w", err)
	}
	var f buildingListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse buildings: %w", err)
	}
	t := &BuildingTable{byName: make(map[string]*Building, len(f.Buildings))}
	for i := range f.Buildings {
		b := &f.Buildings[i]
		b.Index = i
		b.Tech, b.Required = -1, -1
		if b.Genus == "" {
			b.Genus = GenusImprovement
		}
		t.buildings = append(t.buildings, b)
		t.byName[b.Name] = b
	}
	for _, b := range t.buildings {
		if b.Requires == "" {
			continue
		}
		req, ok := t.byName[b.Requires]
		if !ok {
			return nil, fmt.Errorf("building %q: unknown required building %q", b.Name, b.Requires)
		}
		b.Required = req.Index
	}
	return t, nil
}

// Get returns the building at index i, or nil.
func (t *BuildingTable) Get(i int) *Building {
	if i < 0 || i >= len(t.buildings) {
		return nil
	}
	return t.buildings[i]
}

// ByName returns the named building, or nil.
func (t *BuildingTable) ByName(name string) *Building {
	return t.byName[name]
}

// Count returns the number of buildings.
func (t *BuildingTable) Count() int {
	return len(t.buildings)
}

// Capital returns the building that marks a capital, or nil.
func (t *BuildingTable) Capital() *Building {
	for _, b := range t.buildings {
		if b.Effects.Capital {
			return b
		}
	}
	return nil
}
