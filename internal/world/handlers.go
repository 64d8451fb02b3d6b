package world

import (
	"github.com/civgym/gym/internal/core/event"
	"github.com/civgym/gym/internal/data"
	"go.uber.org/zap"
)

// Handlers re-validate every request and ignore illegal ones. They report
// whether the request changed the game.

// UnitMoveHandling moves u onto the adjacent dst. A destination holding
// enemy units is attacked and an undefended enemy city is conquered.
func (s *Server) UnitMoveHandling(u *Unit, dst *Tile) bool {
	if u == nil || dst == nil || s.game == nil {
		return false
	}
	owner := s.PlayerByIndex(u.Owner)
	switch {
	case s.IsEnemyUnitTile(dst, owner):
		if !s.IsActionEnabled(ActionAttack, u, dst) {
			return false
		}
		s.unitAttack(u, dst)
		return true
	case s.IsEnemyCityTile(dst, owner):
		if !s.IsActionEnabled(ActionConquerCity, u, dst) {
			return false
		}
		s.conquerCity(u, dst)
		return true
	}
	if !s.CanUnitMoveToTile(u, dst) {
		return false
	}
	s.moveUnitTo(u, dst, s.moveCost(u, s.UnitTile(u), dst))
	return true
}

// PerformAction runs act for the unit actorID owned by p. For found city and
// attack, target is a tile index; for disband it is the unit id itself.
func (s *Server) PerformAction(p *Player, actorID, target int, name string, act ActionID) bool {
	u := s.UnitByID(actorID)
	if u == nil || p == nil || u.Owner != p.Index {
		return false
	}
	switch act {
	case ActionFoundCity:
		t := s.TileByIndex(target)
		if !s.IsActionEnabled(ActionFoundCity, u, t) {
			return false
		}
		s.cityBuild(p, u, t, name)
		return true
	case ActionAttack:
		t := s.TileByIndex(target)
		if !s.IsActionEnabled(ActionAttack, u, t) {
			return false
		}
		s.unitAttack(u, t)
		return true
	case ActionDisbandUnit:
		if target != int(u.ID) || !s.IsActionEnabled(ActionDisbandUnit, u, s.UnitTile(u)) {
			return false
		}
		s.disbandUnit(u)
		return true
	case ActionConquerCity:
		t := s.TileByIndex(target)
		if !s.IsActionEnabled(ActionConquerCity, u, t) {
			return false
		}
		s.conquerCity(u, t)
		return true
	}
	return false
}

func (s *Server) cityBuild(p *Player, u *Unit, t *Tile, name string) {
	if name == "" {
		name = s.CityNameSuggestion(p, t)
	}
	s.removeUnit(u)
	c := s.createCity(p.Index, t, name)
	s.log.Debug("city founded",
		zap.String("city", c.Name),
		zap.Int("player", p.Index),
		zap.Int("x", t.X), zap.Int("y", t.Y),
	)
}

// disbandUnit removes u. Inside an own city half its cost goes into the
// production stock.
func (s *Server) disbandUnit(u *Unit) {
	if c := s.TileCity(s.UnitTile(u)); c != nil && c.Owner == u.Owner {
		c.ShieldStock += u.Type.Cost / 2
	}
	s.removeUnit(u)
}

func (s *Server) conquerCity(u *Unit, t *Tile) {
	c := s.TileCity(t)
	s.moveUnitTo(u, t, MoveFrags)
	if c == nil {
		return
	}
	s.notify(s.PlayerByIndex(c.Owner), "city lost", zap.String("city", c.Name))
	s.transferCity(c, u.Owner)
}

// UnitActivityHandling starts act on u, choosing the target extra itself.
func (s *Server) UnitActivityHandling(u *Unit, act Activity) bool {
	if !s.CanUnitDoActivity(u, act, -1) {
		return false
	}
	s.setActivity(u, act, -1)
	return true
}

// HandleChangeActivity starts act on p's unit. A target extra that does not
// belong to the activity is replaced by the next buildable one.
func (s *Server) HandleChangeActivity(p *Player, unitID int, act Activity, target int) bool {
	u := s.UnitByID(unitID)
	if u == nil || p == nil || u.Owner != p.Index {
		return false
	}
	if act.IsTerrainWork() {
		if ex := s.game.Ruleset.Terrains.Extra(target); ex == nil || ex.Cause != activityCause(act) {
			target = -1
		}
	}
	if !s.CanUnitDoActivity(u, act, target) {
		return false
	}
	s.setActivity(u, act, target)
	return true
}

func (s *Server) setActivity(u *Unit, act Activity, target int) {
	u.Activity = act
	u.ActivityTarget = -1
	u.ActivityCount = 0
	if !act.IsTerrainWork() {
		return
	}
	if target < 0 {
		ex := s.NextExtraForTile(s.UnitTile(u), activityCause(act), s.PlayerByIndex(u.Owner), u)
		if ex == nil {
			u.Activity = ActivityIdle
			return
		}
		target = ex.ID
	}
	u.ActivityTarget = target
}

func productionClass(rs *data.Ruleset, prod Production) int {
	if prod.Kind == ProductionUnit {
		return 0
	}
	if b := rs.Buildings.Get(prod.Value); b != nil && b.Genus == data.GenusSmallWonder {
		return 2
	}
	return 1
}

// HandleCityChange switches what p's city builds. Changing class (unit,
// improvement, wonder) from the one the turn started with halves the stock.
// Cities that bought this turn cannot change.
func (s *Server) HandleCityChange(p *Player, cityID int, kind ProductionKind, value int) bool {
	c := s.CityByID(cityID)
	if c == nil || p == nil || c.Owner != p.Index || c.DidBuy {
		return false
	}
	next := Production{Kind: kind, Value: value}
	if next == c.Production {
		return false
	}
	rs := s.game.Ruleset
	switch kind {
	case ProductionUnit:
		if !s.CanCityBuildUnitNow(c, rs.Units.Get(value)) {
			return false
		}
	case ProductionBuilding:
		if !s.CanCityBuildImprovementNow(c, rs.Buildings.Get(value)) {
			return false
		}
	default:
		return false
	}
	c.Production = next
	if productionClass(rs, next) == productionClass(rs, c.changedFrom) {
		c.ShieldStock = c.shieldsBefore
	} else {
		c.ShieldStock = c.shieldsBefore / 2
	}
	return true
}

// ReallyHandleCityBuy completes the city's production for gold.
func (s *Server) ReallyHandleCityBuy(p *Player, c *City) bool {
	if c == nil || p == nil || c.Owner != p.Index {
		return false
	}
	if !s.CanCityBuy(p, c) {
		return false
	}
	cost := s.CityProductionBuyGoldCost(c)
	p.Economic.Gold -= cost
	c.ShieldStock = s.CityProductionBuildShieldCost(c)
	c.DidBuy = true
	s.notify(p, "production bought", zap.String("city", c.Name), zap.Int("cost", cost))
	return true
}

// CanCityBuy reports whether p may buy c's production this turn.
func (s *Server) CanCityBuy(p *Player, c *City) bool {
	if c.TurnFounded == s.game.Info.Turn || c.DidBuy {
		return false
	}
	if c.ShieldStock >= s.CityProductionBuildShieldCost(c) {
		return false
	}
	if c.Production.Kind == ProductionUnit && c.Anarchy > 0 {
		return false
	}
	return p.Economic.Gold >= s.CityProductionBuyGoldCost(c)
}

// HandlePlayerResearch sets p's research target. Only techs whose
// prerequisites are all known can be chosen.
func (s *Server) HandlePlayerResearch(p *Player, tech int) bool {
	if p == nil || p.Research.Researching == tech {
		return false
	}
	if s.InventionState(p, tech) != TechPrereqsKnown {
		return false
	}
	p.Research.Researching = tech
	return true
}

// emitUnitLost publishes before the unit is removed, so subscribers still
// see its owner.
func (s *Server) emitUnitLost(u *Unit, killer int) {
	event.Publish(s.bus, event.UnitLost{UnitID: u.ID, Owner: u.Owner, Killer: killer})
}
