package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Unit type flags.
const (
	FlagCities        = "Cities"   // can found cities
	FlagSettlers      = "Settlers" // can build terrain improvements
	FlagNonMil        = "NonMil"
	FlagIgTer         = "IgTer" // every step costs one move fragment
	FlagAnimal        = "Animal"
	FlagUndisbandable = "Undisbandable"
)

// Unit type roles.
const (
	RoleExplorer   = "Explorer"
	RoleDefendOk   = "DefendOk"
	RoleFirstBuild = "FirstBuild"
)

// Unit domains.
const (
	DomainLand = "land"
	DomainSea  = "sea"
)

// UnitType is a buildable (or wildlife) unit kind.
type UnitType struct {
	Index          int      `yaml:"-"`
	Name           string   `yaml:"name"`
	Domain         string   `yaml:"domain"`
	Attack         int      `yaml:"attack"`
	Defense        int      `yaml:"defense"`
	MoveRate       int      `yaml:"move_rate"` // whole moves
	HP             int      `yaml:"hp"`
	Firepower      int      `yaml:"firepower"`
	Cost           int      `yaml:"cost"` // shields
	VisionRadiusSq int      `yaml:"vision_radius_sq"`
	TechReq        string   `yaml:"tech_req"`
	ObsoleteBy     string   `yaml:"obsolete_by"`
	Flags          []string `yaml:"flags"`
	Roles          []string `yaml:"roles"`

	Tech     int `yaml:"-"` // -1 when no tech is required
	Obsolete int `yaml:"-"` // -1 when never obsolete
}

// HasFlag reports whether the type carries flag.
func (u *UnitType) HasFlag(flag string) bool {
	for _, f := range u.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// HasRole reports whether the type carries role.
func (u *UnitType) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *UnitType) IsMilitary() bool { return !u.HasFlag(FlagNonMil) }

type unitListFile struct {
	Units []UnitType `yaml:"units"`
}

// UnitTypeTable holds unit types in ruleset order.
type UnitTypeTable struct {
	types  []*UnitType
	byName map[string]*UnitType
}

// LoadUnitTypeTable loads units.yaml. Tech and obsolescence references are
// resolved later by LoadRuleset.
func LoadUnitTypeTable(path string) (*UnitTypeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read units: %w", err)
	}
	var f unitListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse units: %w", err)
	}
	t := &UnitTypeTable{byName: make(map[string]*UnitType, len(f.Units))}
	for i := range f.Units {
		u := &f.Units[i]
		u.Index = i
		u.Tech, u.Obsolete = -1, -1
		if u.Domain == "" {
			u.Domain = DomainLand
		}
		if u.Firepower == 0 {
			u.Firepower = 1
		}
		if u.MoveRate < 1 {
			return nil, fmt.Errorf("unit %q: move_rate must be positive", u.Name)
		}
		if u.HP < 1 {
			return nil, fmt.Errorf("unit %q: hp must be positive", u.Name)
		}
		t.types = append(t.types, u)
		t.byName[u.Name] = u
	}
	return t, nil
}

// Get returns the unit type at index i, or nil.
func (t *UnitTypeTable) Get(i int) *UnitType {
	if i < 0 || i >= len(t.types) {
		return nil
	}
	return t.types[i]
}

// ByName returns the named unit type, or nil.
func (t *UnitTypeTable) ByName(name string) *UnitType {
	return t.byName[name]
}

// Count returns the number of unit types.
func (t *UnitTypeTable) Count() int {
	return len(t.types)
}

// FirstWithFlag returns the first non-animal type carrying flag, or nil.
func (t *UnitTypeTable) FirstWithFlag(flag string) *UnitType {
	for _, u := range t.types {
		if u.HasFlag(flag) && !u.HasFlag(FlagAnimal) {
			return u
		}
	}
	return nil
}

// FirstWithRole returns the first type carrying role, or nil.
func (t *UnitTypeTable) FirstWithRole(role string) *UnitType {
	for _, u := range t.types {
		if u.HasRole(role) {
			return u
		}
	}
	return nil
}

// Animals returns the wildlife types.
func (t *UnitTypeTable) Animals() []*UnitType {
	var out []*UnitType
	for _, u := range t.types {
		if u.HasFlag(FlagAnimal) {
			out = append(out, u)
		}
	}
	return out
}
