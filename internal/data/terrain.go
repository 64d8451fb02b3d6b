package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Terrain classes.
const (
	ClassLand    = "land"
	ClassOceanic = "oceanic"
)

// Terrain is one terrain type.
type Terrain struct {
	Index          int    `yaml:"-"`
	Name           string `yaml:"name"`
	Class          string `yaml:"class"`
	MoveCost       int    `yaml:"move_cost"`
	DefenseBonus   int    `yaml:"defense_bonus"` // percent
	Food           int    `yaml:"food"`
	Shield         int    `yaml:"shield"`
	Trade          int    `yaml:"trade"`
	RoadTime       int    `yaml:"road_time"` // 0 = roads not allowed
	RoadTrade      int    `yaml:"road_trade"`
	IrrigationTime int    `yaml:"irrigation_time"` // 0 = not allowed
	IrrigationFood int    `yaml:"irrigation_food"`
	MineTime       int    `yaml:"mine_time"` // 0 = not allowed
	MineShield     int    `yaml:"mine_shield"`
}

func (t *Terrain) IsOcean() bool { return t.Class == ClassOceanic }

// ExtraCause says which activity produces an extra.
type ExtraCause int

const (
	ExtraCauseRoad ExtraCause = iota
	ExtraCauseIrrigation
	ExtraCauseMine
)

var extraCauseNames = map[string]ExtraCause{
	"road":       ExtraCauseRoad,
	"irrigation": ExtraCauseIrrigation,
	"mine":       ExtraCauseMine,
}

// Extra is a tile improvement. Bit is the extra's flag in a tile's extras mask.
type Extra struct {
	ID    int        `yaml:"-"`
	Name  string     `yaml:"name"`
	Cause ExtraCause `yaml:"-"`
	Bit   uint8      `yaml:"-"`

	CauseName string   `yaml:"cause"`
	Conflicts []string `yaml:"conflicts"`
	conflicts uint8
}

// ConflictMask returns the extras bits that cannot coexist with this extra.
func (e *Extra) ConflictMask() uint8 { return e.conflicts }

type terrainFile struct {
	Terrains []Terrain `yaml:"terrains"`
	Extras   []Extra   `yaml:"extras"`
}

// TerrainTable holds terrains and extras in ruleset order.
type TerrainTable struct {
	terrains []*Terrain
	byName   map[string]*Terrain
	extras   []*Extra
}

// LoadTerrainTable loads terrain.yaml.
func LoadTerrainTable(path string) (*TerrainTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terrain: %w", err)
	}
	var f terrainFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse terrain: %w", err)
	}
	if len(f.Terrains) == 0 {
		return nil, fmt.Errorf("parse terrain: no terrains defined")
	}
	t := &TerrainTable{byName: make(map[string]*Terrain, len(f.Terrains))}
	for i := range f.Terrains {
		ter := &f.Terrains[i]
		ter.Index = i
		if ter.Class != ClassLand && ter.Class != ClassOceanic {
			return nil, fmt.Errorf("terrain %q: unknown class %q", ter.Name, ter.Class)
		}
		if ter.MoveCost < 1 {
			ter.MoveCost = 1
		}
		t.terrains = append(t.terrains, ter)
		t.byName[ter.Name] = ter
	}
	if len(f.Extras) > 8 {
		return nil, fmt.Errorf("parse terrain: at most 8 extras, got %d", len(f.Extras))
	}
	for i := range f.Extras {
		ex := &f.Extras[i]
		cause, ok := extraCauseNames[ex.CauseName]
		if !ok {
			return nil, fmt.Errorf("extra %q: unknown cause %q", ex.Name, ex.CauseName)
		}
		ex.ID = i
		ex.Cause = cause
		ex.Bit = 1 << uint(i)
		t.extras = append(t.extras, ex)
	}
	for _, ex := range t.extras {
		for _, name := range ex.Conflicts {
			other := t.ExtraByName(name)
			if other == nil {
				return nil, fmt.Errorf("extra %q: unknown conflict %q", ex.Name, name)
			}
			ex.conflicts |= other.Bit
			other.conflicts |= ex.Bit
		}
	}
	return t, nil
}

// Get returns the terrain at index i, or nil.
func (t *TerrainTable) Get(i int) *Terrain {
	if i < 0 || i >= len(t.terrains) {
		return nil
	}
	return t.terrains[i]
}

// ByName returns the named terrain, or nil.
func (t *TerrainTable) ByName(name string) *Terrain {
	return t.byName[name]
}

// Count returns the number of terrains.
func (t *TerrainTable) Count() int {
	return len(t.terrains)
}

// Extra returns the extra with the given id, or nil.
func (t *TerrainTable) Extra(id int) *Extra {
	if id < 0 || id >= len(t.extras) {
		return nil
	}
	return t.extras[id]
}

// ExtraByName returns the named extra, or nil.
func (t *TerrainTable) ExtraByName(name string) *Extra {
	for _, ex := range t.extras {
		if ex.Name == name {
			return ex
		}
	}
	return nil
}

// ExtrasByCause returns the extras an activity can produce, in ruleset order.
func (t *TerrainTable) ExtrasByCause(cause ExtraCause) []*Extra {
	var out []*Extra
	for _, ex := range t.extras {
		if ex.Cause == cause {
			out = append(out, ex)
		}
	}
	return out
}

// ExtraCount returns the number of extras.
func (t *TerrainTable) ExtraCount() int {
	return len(t.extras)
}
