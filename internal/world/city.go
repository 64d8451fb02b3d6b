package world

import (
	"github.com/civgym/gym/internal/core/ecs"
	"github.com/civgym/gym/internal/data"
)

// City is one city.
type City struct {
	ID          ecs.EntityID
	Name        string
	Owner       int
	Original    int // founder
	Tile        int
	Size        int
	FoodStock   int
	ShieldStock int
	Production  Production
	TurnFounded int
	DidBuy      bool
	Anarchy     int // consecutive turns in disorder
	Buildings   []bool

	// Surplus from the last end-of-phase pass.
	FoodSurplus   int
	ShieldSurplus int
	TradeSurplus  int

	// production and stock at the start of the turn, for the change penalty
	changedFrom   Production
	shieldsBefore int
}

// Has reports whether the city has building b.
func (c *City) Has(b int) bool {
	return b >= 0 && b < len(c.Buildings) && c.Buildings[b]
}

// createCity founds a city named name on t for owner.
func (s *Server) createCity(owner int, t *Tile, name string) *City {
	g := s.game
	rs := g.Ruleset
	c := &City{
		ID:          g.ids.Create(),
		Name:        name,
		Owner:       owner,
		Original:    owner,
		Tile:        t.Index,
		Size:        1,
		TurnFounded: g.Info.Turn,
		Buildings:   make([]bool, rs.Buildings.Count()),
	}
	if fb := rs.FirstBuild(); fb != nil {
		c.Production = Production{Kind: ProductionUnit, Value: fb.Index}
	}
	c.changedFrom = c.Production
	c.shieldsBefore = 0

	// First city becomes the capital.
	if capital := rs.Buildings.Capital(); capital != nil && len(s.CitiesOf(owner)) == 0 {
		c.Buildings[capital.Index] = true
	}

	g.cities.Set(c.ID, c)
	t.City = c.ID
	t.Owner = owner
	s.claimTerritory(c)
	if p := s.PlayerByIndex(owner); p != nil {
		s.revealAround(p, t, rs.Game.CityVisionRadiusSq)
	}
	return c
}

// claimTerritory gives unowned tiles in the city radius to the owner.
func (s *Server) claimTerritory(c *City) {
	g := s.game
	center := g.Map.TileByIndex(c.Tile)
	g.Map.RadiusIterate(center, g.Ruleset.Game.CityRadiusSq, func(t *Tile) {
		if t.Owner == NoOwner {
			t.Owner = c.Owner
		}
	})
}

// transferCity hands c to a new owner, e.g. after conquest.
func (s *Server) transferCity(c *City, to int) {
	g := s.game
	from := c.Owner
	c.Owner = to
	c.DidBuy = false
	if capital := g.Ruleset.Buildings.Capital(); capital != nil {
		c.Buildings[capital.Index] = false
	}
	center := g.Map.TileByIndex(c.Tile)
	g.Map.RadiusIterate(center, g.Ruleset.Game.CityRadiusSq, func(t *Tile) {
		if t.Owner == from {
			t.Owner = to
		}
	})
	if c.Size > 1 {
		c.Size--
	}
}

// ProductionName returns the display name of what c is building.
func (s *Server) ProductionName(c *City) string {
	rs := s.game.Ruleset
	if c.Production.Kind == ProductionUnit {
		if ut := rs.Units.Get(c.Production.Value); ut != nil {
			return ut.Name
		}
		return ""
	}
	if b := rs.Buildings.Get(c.Production.Value); b != nil {
		return b.Name
	}
	return ""
}

// CityProductionBuildShieldCost returns the shields needed to finish the
// current production.
func (s *Server) CityProductionBuildShieldCost(c *City) int {
	rs := s.game.Ruleset
	switch c.Production.Kind {
	case ProductionUnit:
		if ut := rs.Units.Get(c.Production.Value); ut != nil {
			return ut.Cost
		}
	case ProductionBuilding:
		if b := rs.Buildings.Get(c.Production.Value); b != nil {
			return b.Cost
		}
	}
	return 0
}

// CityProductionBuyGoldCost returns the gold needed to complete production
// now: 2m + m²/20 for m missing shields, doubled for units and doubled again
// when nothing has been invested yet.
func (s *Server) CityProductionBuyGoldCost(c *City) int {
	total := s.CityProductionBuildShieldCost(c)
	missing := total - c.ShieldStock
	if missing <= 0 {
		return 0
	}
	cost := 2*missing + missing*missing/20
	if c.Production.Kind == ProductionUnit {
		cost *= 2
	}
	if c.ShieldStock == 0 {
		cost *= 2
	}
	return cost
}

// CityProductionTurnsToBuild estimates turns to completion at the current
// shield surplus; 999 when no progress is being made.
func (s *Server) CityProductionTurnsToBuild(c *City) int {
	total := s.CityProductionBuildShieldCost(c)
	missing := total - c.ShieldStock
	if missing <= 0 {
		return 1
	}
	surplus := c.ShieldSurplus
	if surplus <= 0 {
		surplus = s.cityShieldSurplus(c)
	}
	if surplus <= 0 {
		return 999
	}
	return (missing + surplus - 1) / surplus
}

// cityTileOutput returns the food, shield and trade of one worked tile.
func (s *Server) cityTileOutput(t *Tile) (food, shield, trade int) {
	ter := t.Terrain
	exs := s.game.Ruleset.Terrains
	food, shield, trade = ter.Food, ter.Shield, ter.Trade
	if ex := exs.ExtraByName("Irrigation"); ex != nil && t.HasExtra(ex.Bit) {
		food += ter.IrrigationFood
	}
	if ex := exs.ExtraByName("Mine"); ex != nil && t.HasExtra(ex.Bit) {
		shield += ter.MineShield
	}
	if ex := exs.ExtraByName("Road"); ex != nil && t.HasExtra(ex.Bit) {
		trade += ter.RoadTrade
	}
	return food, shield, trade
}

// workedTiles returns the city center plus the best `size` tiles around it.
func (s *Server) workedTiles(c *City) []*Tile {
	g := s.game
	center := g.Map.TileByIndex(c.Tile)
	var candidates []*Tile
	g.Map.RadiusIterate(center, g.Ruleset.Game.CityRadiusSq, func(t *Tile) {
		if t == center || (t.Owner != c.Owner && t.Owner != NoOwner) || t.HasCity() {
			return
		}
		candidates = append(candidates, t)
	})
	// Stable selection sort by tile value keeps the choice deterministic.
	value := func(t *Tile) int {
		f, sh, tr := s.cityTileOutput(t)
		return f*3 + sh*2 + tr
	}
	worked := []*Tile{center}
	for n := 0; n < c.Size && len(candidates) > 0; n++ {
		best := 0
		for i := 1; i < len(candidates); i++ {
			if value(candidates[i]) > value(candidates[best]) {
				best = i
			}
		}
		worked = append(worked, candidates[best])
		candidates = append(candidates[:best], candidates[best+1:]...)
	}
	return worked
}

func (s *Server) cityOutput(c *City) (food, shield, trade int) {
	for i, t := range s.workedTiles(c) {
		f, sh, tr := s.cityTileOutput(t)
		if i == 0 {
			// The center tile always yields at least one of each.
			f, sh, tr = max(f, 1), max(sh, 1), max(tr, 1)
		}
		food += f
		shield += sh
		trade += tr
	}
	rs := s.game.Ruleset
	pct := 0
	for b := 0; b < len(c.Buildings); b++ {
		if c.Buildings[b] {
			pct += rs.Buildings.Get(b).Effects.ShieldPct
		}
	}
	shield += shield * pct / 100
	return food, shield, trade
}

func (s *Server) cityShieldSurplus(c *City) int {
	_, shield, _ := s.cityOutput(c)
	return shield
}

func (s *Server) cityDefenders(c *City) int {
	t := s.game.Map.TileByIndex(c.Tile)
	n := 0
	for _, id := range t.Units {
		if u, ok := s.game.units.Get(id); ok && u.Owner == c.Owner && u.Type.IsMilitary() {
			n++
		}
	}
	return n
}

// sizeCap returns the largest size c can reach.
func (s *Server) sizeCap(c *City) int {
	limit := 8
	rs := s.game.Ruleset
	for b := 0; b < len(c.Buildings); b++ {
		if c.Buildings[b] {
			if sc := rs.Buildings.Get(b).Effects.SizeCap; sc > limit {
				limit = sc
			}
		}
	}
	return limit
}

func (s *Server) cityEffects(c *City) data.BuildingEffects {
	var sum data.BuildingEffects
	rs := s.game.Ruleset
	for b := 0; b < len(c.Buildings); b++ {
		if !c.Buildings[b] {
			continue
		}
		e := rs.Buildings.Get(b).Effects
		sum.Content += e.Content
		sum.SciencePct += e.SciencePct
		sum.TaxPct += e.TaxPct
		sum.DefenseBonus += e.DefenseBonus
		if e.GrowthKeep > sum.GrowthKeep {
			sum.GrowthKeep = e.GrowthKeep
		}
		sum.VeteranLand = sum.VeteranLand || e.VeteranLand
	}
	return sum
}
