package data

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Ruleset bundles every table of one ruleset directory.
type Ruleset struct {
	Name      string
	Game      GameSettings
	Terrains  *TerrainTable
	Units     *UnitTypeTable
	Buildings *BuildingTable
	Techs     *TechTable
	Nations   *NationTable
}

// LoadRuleset loads data/rulesets/<name>/ under dir and resolves all cross
// references by name.
func LoadRuleset(dir, name string) (*Ruleset, error) {
	root := filepath.Join(dir, name)
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("ruleset %q not found in %s", name, dir)
	}

	rs := &Ruleset{Name: name}

	raw, err := os.ReadFile(filepath.Join(root, "game.yaml"))
	if err != nil {
		return nil, fmt.Errorf("read game settings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &rs.Game); err != nil {
		return nil, fmt.Errorf("parse game settings: %w", err)
	}

	if rs.Terrains, err = LoadTerrainTable(filepath.Join(root, "terrain.yaml")); err != nil {
		return nil, err
	}
	if rs.Units, err = LoadUnitTypeTable(filepath.Join(root, "units.yaml")); err != nil {
		return nil, err
	}
	if rs.Buildings, err = LoadBuildingTable(filepath.Join(root, "buildings.yaml")); err != nil {
		return nil, err
	}
	if rs.Techs, err = LoadTechTable(filepath.Join(root, "techs.yaml")); err != nil {
		return nil, err
	}
	if rs.Nations, err = LoadNationTable(filepath.Join(root, "nations.yaml")); err != nil {
		return nil, err
	}

	if err := rs.resolve(); err != nil {
		return nil, fmt.Errorf("ruleset %q: %w", name, err)
	}
	return rs, nil
}

func (rs *Ruleset) resolve() error {
	for i := 0; i < rs.Units.Count(); i++ {
		u := rs.Units.Get(i)
		tech, err := rs.Techs.Index(u.TechReq)
		if err != nil {
			return fmt.Errorf("unit %q: %w", u.Name, err)
		}
		u.Tech = tech
		if u.ObsoleteBy != "" {
			by := rs.Units.ByName(u.ObsoleteBy)
			if by == nil {
				return fmt.Errorf("unit %q: unknown obsoleting unit %q", u.Name, u.ObsoleteBy)
			}
			u.Obsolete = by.Index
		}
	}
	for i := 0; i < rs.Buildings.Count(); i++ {
		b := rs.Buildings.Get(i)
		tech, err := rs.Techs.Index(b.TechReq)
		if err != nil {
			return fmt.Errorf("building %q: %w", b.Name, err)
		}
		b.Tech = tech
	}

	g := &rs.Game
	g.initTechs = g.initTechs[:0]
	for _, name := range g.InitTechs {
		tech, err := rs.Techs.Index(name)
		if err != nil {
			return fmt.Errorf("init_techs: %w", err)
		}
		g.initTechs = append(g.initTechs, tech)
	}
	for _, c := range g.StartUnits {
		if rs.StartUnitType(c) == nil {
			return fmt.Errorf("start_units: no unit type for role %q", string(c))
		}
	}
	if g.MaxPlayers < 2 {
		g.MaxPlayers = 2
	}
	if g.MaxRate <= 0 || g.MaxRate > 100 {
		g.MaxRate = 100
	}
	if g.YearStep == 0 {
		g.YearStep = 1
	}
	if g.TechCostBase <= 0 {
		g.TechCostBase = 20
	}
	if len(g.Colors) == 0 {
		g.Colors = []RGB{{R: 255, G: 255, B: 255}}
	}
	return nil
}

// StartUnitType maps a start_units role letter to a unit type, or nil.
func (rs *Ruleset) StartUnitType(role rune) *UnitType {
	switch role {
	case 'c':
		return rs.Units.FirstWithFlag(FlagCities)
	case 'w':
		for i := 0; i < rs.Units.Count(); i++ {
			u := rs.Units.Get(i)
			if u.HasFlag(FlagSettlers) && !u.HasFlag(FlagCities) {
				return u
			}
		}
		return rs.Units.FirstWithFlag(FlagSettlers)
	case 'x':
		return rs.Units.FirstWithRole(RoleExplorer)
	case 'd':
		return rs.Units.FirstWithRole(RoleDefendOk)
	}
	return nil
}

// FirstBuild returns the unit type new cities produce by default.
func (rs *Ruleset) FirstBuild() *UnitType {
	if u := rs.Units.FirstWithRole(RoleFirstBuild); u != nil {
		return u
	}
	for i := 0; i < rs.Units.Count(); i++ {
		u := rs.Units.Get(i)
		if !u.HasFlag(FlagAnimal) && u.Tech < 0 {
			return u
		}
	}
	return nil
}
