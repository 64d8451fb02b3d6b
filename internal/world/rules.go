package world

import (
	"github.com/civgym/gym/internal/core/ecs"
	"github.com/civgym/gym/internal/data"
)

// IsEnemyUnitTile reports whether t holds a unit p is at war with. Every
// other player counts as an enemy.
func (s *Server) IsEnemyUnitTile(t *Tile, p *Player) bool {
	if t == nil || p == nil {
		return false
	}
	for _, id := range t.Units {
		if u, ok := s.game.units.Get(id); ok && u.Owner != p.Index {
			return true
		}
	}
	return false
}

// IsEnemyCityTile reports whether t holds a city of another player.
func (s *Server) IsEnemyCityTile(t *Tile, p *Player) bool {
	c := s.TileCity(t)
	return c != nil && p != nil && c.Owner != p.Index
}

// CanUnitMoveToTile reports whether u may make a regular move onto dst.
// Attacks and conquests are not regular moves.
func (s *Server) CanUnitMoveToTile(u *Unit, dst *Tile) bool {
	if u == nil || dst == nil || u.MovesLeft <= 0 {
		return false
	}
	src := s.UnitTile(u)
	if src == nil || !s.game.Map.Adjacent(src, dst) {
		return false
	}
	if !canExistAt(u.Type, dst) {
		return false
	}
	owner := s.PlayerByIndex(u.Owner)
	if s.IsEnemyUnitTile(dst, owner) || s.IsEnemyCityTile(dst, owner) {
		return false
	}
	if u.Type.HasFlag(data.FlagAnimal) && dst.Owner != NoOwner {
		return false
	}
	return true
}

// moveCost returns the fragments spent moving u from src to dst.
func (s *Server) moveCost(u *Unit, src, dst *Tile) int {
	if u.Type.Domain == data.DomainSea || u.Type.HasFlag(data.FlagIgTer) {
		return 1
	}
	if road := s.game.Ruleset.Terrains.ExtraByName("Road"); road != nil {
		if (src.HasExtra(road.Bit) || src.HasCity()) && (dst.HasExtra(road.Bit) || dst.HasCity()) {
			return 1
		}
	}
	return dst.Terrain.MoveCost * MoveFrags
}

// CanUnitDoActivity reports whether u may start act. For terrain work,
// target names the extra to build; -1 picks the next buildable one.
func (s *Server) CanUnitDoActivity(u *Unit, act Activity, target int) bool {
	if u == nil {
		return false
	}
	t := s.UnitTile(u)
	switch act {
	case ActivityIdle:
		return true
	case ActivityFortifying:
		return u.Type.IsMilitary() && !u.Type.HasFlag(data.FlagAnimal) &&
			u.Type.Domain == data.DomainLand &&
			u.Activity != ActivityFortifying && u.Activity != ActivityFortified
	case ActivityRoad, ActivityIrrigate, ActivityMine:
		if !u.Type.HasFlag(data.FlagSettlers) {
			return false
		}
		cause := activityCause(act)
		if target < 0 {
			return s.NextExtraForTile(t, cause, s.PlayerByIndex(u.Owner), u) != nil
		}
		ex := s.game.Ruleset.Terrains.Extra(target)
		return ex != nil && ex.Cause == cause && s.canBuildExtra(ex, t, u)
	}
	return false
}

func activityCause(act Activity) data.ExtraCause {
	switch act {
	case ActivityIrrigate:
		return data.ExtraCauseIrrigation
	case ActivityMine:
		return data.ExtraCauseMine
	}
	return data.ExtraCauseRoad
}

// NextExtraForTile returns the first extra of the given cause that can be
// built on t, or nil.
func (s *Server) NextExtraForTile(t *Tile, cause data.ExtraCause, p *Player, u *Unit) *data.Extra {
	if t == nil {
		return nil
	}
	for _, ex := range s.game.Ruleset.Terrains.ExtrasByCause(cause) {
		if p != nil && t.Owner != NoOwner && t.Owner != p.Index {
			continue
		}
		if s.canBuildExtra(ex, t, u) {
			return ex
		}
	}
	return nil
}

func (s *Server) canBuildExtra(ex *data.Extra, t *Tile, u *Unit) bool {
	if t == nil || t.IsOcean() || t.HasExtra(ex.Bit) {
		return false
	}
	if u != nil {
		if !u.Type.HasFlag(data.FlagSettlers) {
			return false
		}
		if t.Owner != NoOwner && t.Owner != u.Owner {
			return false
		}
	}
	ter := t.Terrain
	switch ex.Cause {
	case data.ExtraCauseRoad:
		return ter.RoadTime > 0 && !t.HasCity()
	case data.ExtraCauseIrrigation:
		return ter.IrrigationTime > 0 && !t.HasCity() && s.hasWaterSource(t)
	case data.ExtraCauseMine:
		return ter.MineTime > 0 && !t.HasCity()
	}
	return false
}

// hasWaterSource reports whether t is cardinally next to ocean, a city or
// irrigation.
func (s *Server) hasWaterSource(t *Tile) bool {
	irr := s.game.Ruleset.Terrains.ExtraByName("Irrigation")
	for d := Direction(0); d < NumDirections; d++ {
		if !d.IsCardinal() {
			continue
		}
		n := s.game.Map.Step(t, d)
		if n == nil {
			continue
		}
		if n.IsOcean() || n.HasCity() || (irr != nil && n.HasExtra(irr.Bit)) {
			return true
		}
	}
	return false
}

// activityTime returns the turns needed to finish terrain work on t.
func activityTime(act Activity, t *Tile) int {
	switch act {
	case ActivityRoad:
		return t.Terrain.RoadTime
	case ActivityIrrigate:
		return t.Terrain.IrrigationTime
	case ActivityMine:
		return t.Terrain.MineTime
	}
	return 0
}

// IsActionEnabled reports whether u may perform act against target.
func (s *Server) IsActionEnabled(act ActionID, u *Unit, target *Tile) bool {
	if u == nil || target == nil {
		return false
	}
	here := s.UnitTile(u)
	owner := s.PlayerByIndex(u.Owner)
	switch act {
	case ActionFoundCity:
		return u.Type.HasFlag(data.FlagCities) && u.MovesLeft > 0 &&
			target == here && s.canFoundCityAt(owner, target)
	case ActionAttack:
		if u.Type.Attack <= 0 || u.MovesLeft <= 0 || !s.game.Map.Adjacent(here, target) {
			return false
		}
		if u.Type.Domain == data.DomainLand && target.IsOcean() {
			return false
		}
		if u.Type.Domain == data.DomainSea && !target.IsOcean() && !target.HasCity() {
			return false
		}
		return s.IsEnemyUnitTile(target, owner)
	case ActionConquerCity:
		return u.Type.IsMilitary() && u.Type.Domain == data.DomainLand &&
			!u.Type.HasFlag(data.FlagAnimal) && u.MovesLeft > 0 &&
			s.game.Map.Adjacent(here, target) &&
			s.IsEnemyCityTile(target, owner) && !s.IsEnemyUnitTile(target, owner)
	case ActionDisbandUnit:
		return target == here && !u.Type.HasFlag(data.FlagUndisbandable)
	}
	return false
}

func (s *Server) canFoundCityAt(p *Player, t *Tile) bool {
	if p == nil || t.IsOcean() || t.HasCity() || t.Terrain.Name == "Inaccessible" {
		return false
	}
	if t.Owner != NoOwner && t.Owner != p.Index {
		return false
	}
	dist := s.settings.Get("citymindist")
	blocked := false
	s.game.cities.Each(func(_ ecs.EntityID, c *City) {
		if s.game.Map.RealDistance(s.game.Map.TileByIndex(c.Tile), t) < dist {
			blocked = true
		}
	})
	return !blocked
}

// CanCityBuildUnitNow reports whether c can start building ut.
func (s *Server) CanCityBuildUnitNow(c *City, ut *data.UnitType) bool {
	if !s.canCityBuildUnitDirect(c, ut) {
		return false
	}
	if ut.Obsolete >= 0 {
		if by := s.game.Ruleset.Units.Get(ut.Obsolete); by != nil && s.canCityBuildUnitDirect(c, by) {
			return false
		}
	}
	return true
}

func (s *Server) canCityBuildUnitDirect(c *City, ut *data.UnitType) bool {
	if c == nil || ut == nil || ut.HasFlag(data.FlagAnimal) {
		return false
	}
	p := s.PlayerByIndex(c.Owner)
	if p == nil || (ut.Tech >= 0 && !p.Research.Knows(ut.Tech)) {
		return false
	}
	if ut.Domain == data.DomainSea && !s.game.Map.IsCoastal(s.game.Map.TileByIndex(c.Tile)) {
		return false
	}
	return true
}

// CanCityBuildImprovementNow reports whether c can start building b.
func (s *Server) CanCityBuildImprovementNow(c *City, b *data.Building) bool {
	if c == nil || b == nil || c.Has(b.Index) {
		return false
	}
	p := s.PlayerByIndex(c.Owner)
	if p == nil || (b.Tech >= 0 && !p.Research.Knows(b.Tech)) {
		return false
	}
	if b.Required >= 0 && !c.Has(b.Required) {
		return false
	}
	if b.Coastal && !s.game.Map.IsCoastal(s.game.Map.TileByIndex(c.Tile)) {
		return false
	}
	if b.Genus == data.GenusSmallWonder && !b.Effects.Capital {
		for _, other := range s.CitiesOf(c.Owner) {
			if other.Has(b.Index) {
				return false
			}
		}
	}
	return true
}

// InventionState returns p's relation to tech.
func (s *Server) InventionState(p *Player, tech int) TechState {
	if p.Research.Knows(tech) {
		return TechKnown
	}
	t := s.game.Ruleset.Techs.Get(tech)
	if t == nil {
		return TechUnknown
	}
	for _, req := range t.ReqIndices() {
		if !p.Research.Knows(req) {
			return TechUnknown
		}
	}
	return TechPrereqsKnown
}
