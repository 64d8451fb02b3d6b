package gym

import "github.com/civgym/gym/internal/data"

// Catalog queries read the loaded ruleset. They return 0 or "" when no
// ruleset is loaded or the index is out of range.

func (e *Env) NumUnitTypes() int {
	if rs := e.ruleset(); rs != nil {
		return rs.Units.Count()
	}
	return 0
}

func (e *Env) UnitTypeName(i int) string {
	if rs := e.ruleset(); rs != nil {
		if ut := rs.Units.Get(i); ut != nil {
			return ut.Name
		}
	}
	return ""
}

func (e *Env) NumBuildingTypes() int {
	if rs := e.ruleset(); rs != nil {
		return rs.Buildings.Count()
	}
	return 0
}

func (e *Env) BuildingTypeName(i int) string {
	if rs := e.ruleset(); rs != nil {
		if b := rs.Buildings.Get(i); b != nil {
			return b.Name
		}
	}
	return ""
}

func (e *Env) NumTechs() int {
	if rs := e.ruleset(); rs != nil {
		return rs.Techs.Count()
	}
	return 0
}

func (e *Env) TechName(i int) string {
	if rs := e.ruleset(); rs != nil {
		if t := rs.Techs.Get(i); t != nil {
			return t.Name
		}
	}
	return ""
}

// Catalog is every name of the loaded ruleset, in index order.
type Catalog struct {
	Ruleset   string   `json:"ruleset"`
	UnitTypes []string `json:"unit_types"`
	Buildings []string `json:"buildings"`
	Techs     []string `json:"techs"`
}

func (e *Env) Catalog() Catalog {
	c := Catalog{}
	if rs := e.ruleset(); rs != nil {
		c.Ruleset = rs.Name
	}
	for i := 0; i < e.NumUnitTypes(); i++ {
		c.UnitTypes = append(c.UnitTypes, e.UnitTypeName(i))
	}
	for i := 0; i < e.NumBuildingTypes(); i++ {
		c.Buildings = append(c.Buildings, e.BuildingTypeName(i))
	}
	for i := 0; i < e.NumTechs(); i++ {
		c.Techs = append(c.Techs, e.TechName(i))
	}
	return c
}

func (e *Env) ruleset() *data.Ruleset {
	return e.engine.Ruleset()
}
